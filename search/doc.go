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


// Package search provides in-memory semantic retrieval over the FAQ knowledge base.
//
// An Index is built once from the embedding cache and never mutated. Queries
// compare a query embedding against every entry with cosine similarity:
//   - BestMatch returns the single highest scoring entry (earliest wins ties)
//   - TopK returns the k best candidates in descending order
//
// An Index is safe for concurrent use by any number of readers.
package search
