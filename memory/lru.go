package memory

import (
	"context"
	"errors"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/storage"
)

const (
	// DefaultShards is the number of independently locked shards.
	DefaultShards = 16

	// DefaultCapacity is the total number of sessions kept in memory.
	DefaultCapacity = 10000

	// DefaultTTL is how long a remembered topic stays valid.
	DefaultTTL = 30 * time.Minute
)

// ErrInvalidCapacity is returned when the capacity cannot hold one entry per shard.
var ErrInvalidCapacity = errors.New("capacity must be at least the number of shards")

// LRURepository is a storage.SessionRepository kept in process memory.
// Sessions are spread over shards by xxhash of the session ID, and each
// shard is a thread-safe LRU cache. The least recently used session in a
// full shard is evicted first.
type LRURepository struct {
	shards []*lru.Cache[string, core.SessionTopic]
	ttl    time.Duration
	clock  storage.Clock
}

var _ storage.SessionRepository = (*LRURepository)(nil)

// LRUOption configures an LRURepository.
type LRUOption func(*LRURepository)

// WithClock sets the clock used for timestamps and expiry.
func WithClock(clock storage.Clock) LRUOption {
	return func(r *LRURepository) {
		r.clock = clock
	}
}

// NewLRURepository creates an in-memory repository holding up to capacity
// sessions across shards. A non-positive ttl keeps entries until evicted.
func NewLRURepository(capacity, shards int, ttl time.Duration, opts ...LRUOption) (*LRURepository, error) {
	if shards <= 0 {
		shards = DefaultShards
	}
	if capacity < shards {
		return nil, ErrInvalidCapacity
	}

	r := &LRURepository{
		shards: make([]*lru.Cache[string, core.SessionTopic], shards),
		ttl:    ttl,
		clock:  storage.SystemClock,
	}
	for _, opt := range opts {
		opt(r)
	}

	perShard := capacity / shards
	for i := range r.shards {
		cache, err := lru.New[string, core.SessionTopic](perShard)
		if err != nil {
			return nil, err
		}
		r.shards[i] = cache
	}
	return r, nil
}

func (r *LRURepository) shard(sessionID string) *lru.Cache[string, core.SessionTopic] {
	return r.shards[xxhash.Sum64String(sessionID)%uint64(len(r.shards))]
}

// GetSessionTopic returns the stored topic for sessionID.
// Expired entries are removed and reported as storage.ErrNotFound.
func (r *LRURepository) GetSessionTopic(_ context.Context, sessionID string) (*core.SessionTopic, error) {
	shard := r.shard(sessionID)
	topic, ok := shard.Get(sessionID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	if topic.Expired(r.clock()) {
		shard.Remove(sessionID)
		return nil, storage.ErrNotFound
	}
	return &topic, nil
}

// PutSessionTopic stores topic, stamping UpdatedAt and ExpiresAt.
func (r *LRURepository) PutSessionTopic(_ context.Context, topic *core.SessionTopic) error {
	if err := core.ValidateSessionTopic(topic); err != nil {
		return err
	}

	stored := *topic
	stored.UpdatedAt = r.clock()
	stored.ExpiresAt = time.Time{}
	if r.ttl > 0 {
		stored.ExpiresAt = stored.UpdatedAt.Add(r.ttl)
	}

	r.shard(stored.SessionID).Add(stored.SessionID, stored)
	return nil
}

// DeleteSessionTopic removes the stored topic for sessionID.
func (r *LRURepository) DeleteSessionTopic(_ context.Context, sessionID string) error {
	r.shard(sessionID).Remove(sessionID)
	return nil
}

// Len returns the number of stored sessions, including expired entries not yet evicted.
func (r *LRURepository) Len() int {
	n := 0
	for _, s := range r.shards {
		n += s.Len()
	}
	return n
}

// Purge drops every stored session.
func (r *LRURepository) Purge() {
	for _, s := range r.shards {
		s.Purge()
	}
}

// Close drops every stored session.
func (r *LRURepository) Close() error {
	r.Purge()
	return nil
}
