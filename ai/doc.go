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


// Package ai provides the embedding abstractions used by civicfaq.
//
// Retrieval needs exactly one AI capability: turning text into a vector.
// This package defines that capability and the provider that owns it, so the
// dialogue and cache layers depend on interfaces rather than HTTP clients.
//
// # Design Principles
//
// The package is designed around two interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - AIProvider: Owns an Embedder and reports provider liveness
//
// # Implementation Packages
//
//   - ai/sidecar: Production client for the embedding sidecar (POST /embed)
//   - ai/openai: Client for OpenAI-compatible embedding APIs via langchaingo
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Both production clients retry transient failures with capped exponential
// backoff and report exhaustion as ErrProviderUnavailable.
//
// # Constructor Return Type Pattern
//
// Public constructors (sidecar.NewProvider, openai.NewProvider) return
// INTERFACE types to enforce abstraction:
//
//	provider, err := sidecar.NewProvider(config)  // returns ai.AIProvider
//
// Test constructors (mock.NewMockEmbedder) return CONCRETE types so tests can
// inject behavior and assert call counts:
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) { ... }
//	count := mockEmbed.CallCount()
package ai
