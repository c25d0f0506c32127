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


// Package heuristics implements the keyword side of retrieval: topic and
// follow-up intent detection, lexical scoring of FAQ entries, and reply
// selection.
//
// All phrase tables live in a single Vocabulary so the topic override
// detector, the intent detector and the lexical scorer share one source of
// truth. Every comparison runs on core.Normalize output.
package heuristics
