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


// Package embedcache builds and persists the FAQ embedding set.
//
// The cache file holds a fingerprint of the FAQ corpus and one embedding per
// entry. A cache is reused only when its fingerprint and item count match the
// entries currently loaded; anything else, including an unreadable or corrupt
// file, triggers a full rebuild through the embedding provider.
package embedcache
