// Package memory remembers the last confidently resolved topic per session.
//
// Memory is the only mutable state touched by a dialogue turn. It wraps a
// storage.SessionRepository and enforces two rules: blank and unknown topics
// are never stored, and storage failures never fail a turn (they are logged
// and read back as the unknown topic).
//
// The default repository is NewLRURepository, a size-bounded, TTL-bounded
// in-memory store split into independently locked shards.
package memory
