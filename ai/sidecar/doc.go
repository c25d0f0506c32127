// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sidecar implements ai.AIProvider against the embedding sidecar.
//
// The sidecar exposes two endpoints:
//
//	POST {baseURL}/embed   {"text": "..."}  ->  {"embedding": [0.1, ...]}
//	GET  {baseURL}/health
//
// EmbedText retries connection failures, timeouts and 502/503/504 responses
// with capped exponential backoff. A response body that cannot be decoded,
// or that has no embedding array, earns a single retry. Every other failure
// is returned immediately. All failures other than caller cancellation are
// reported as *ProviderError, which matches ai.ErrProviderUnavailable.
//
// # Usage
//
//	config := ai.NewConfig(ai.WithBaseURL("http://127.0.0.1:8001"))
//	provider, err := sidecar.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "when is my bin collected")
package sidecar
