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


// Package storage provides the storage abstraction layer for civicfaq.
//
// The only state civicfaq keeps between turns is the last confidently
// resolved topic of each session. This package defines the repository
// interface for that state so the conversation memory can run on different
// backends interchangeably:
//
//   - memory.NewLRURepository: sharded in-memory LRU with TTL (default)
//   - badger.NewSessionRepository: persistent BadgerDB store with TTL
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.SessionRepository interface:
//
//	repo, err := badger.NewSessionRepository(backend, ttl)  // returns storage.SessionRepository
//
// # Expiry
//
// Every repository takes a TTL and a Clock. Entries older than the TTL are
// reported as ErrNotFound. The clock is injectable so expiry is testable
// without sleeping.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
