package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/storage"
)

// SessionRepository implements storage.SessionRepository on BadgerDB.
//
// Entries are written with a Badger TTL so the database drops them on its
// own. Reads also compare ExpiresAt against the injected clock, which keeps
// expiry consistent with the in-memory repository.
type SessionRepository struct {
	backend *Backend
	ttl     time.Duration
	clock   storage.Clock
	logger  *slog.Logger
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// SessionOption configures a SessionRepository.
type SessionOption func(*SessionRepository)

// WithClock sets the clock used for timestamps and expiry checks.
func WithClock(clock storage.Clock) SessionOption {
	return func(r *SessionRepository) {
		r.clock = clock
	}
}

// NewSessionRepository creates a session repository on backend.
// A non-positive ttl keeps entries forever.
func NewSessionRepository(backend *Backend, ttl time.Duration, opts ...SessionOption) (storage.SessionRepository, error) {
	return newSessionRepository(backend, ttl, opts...)
}

func newSessionRepository(backend *Backend, ttl time.Duration, opts ...SessionOption) (*SessionRepository, error) {
	if backend == nil {
		return nil, errors.New("badger backend is required")
	}
	r := &SessionRepository{
		backend: backend,
		ttl:     ttl,
		clock:   storage.SystemClock,
		logger:  slog.Default().With("component", "badger-session-repository"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// GetSessionTopic returns the stored topic for sessionID.
func (r *SessionRepository) GetSessionTopic(ctx context.Context, sessionID string) (*core.SessionTopic, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var topic *core.SessionTopic
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionTopicKey(sessionID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			topic, err = storage.UnmarshalSessionTopic(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	if topic.Expired(r.clock()) {
		return nil, storage.ErrNotFound
	}
	return topic, nil
}

// PutSessionTopic stores topic, stamping UpdatedAt and ExpiresAt.
func (r *SessionRepository) PutSessionTopic(ctx context.Context, topic *core.SessionTopic) error {
	if err := core.ValidateSessionTopic(topic); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	stored := *topic
	stored.UpdatedAt = r.clock()
	stored.ExpiresAt = time.Time{}
	if r.ttl > 0 {
		stored.ExpiresAt = stored.UpdatedAt.Add(r.ttl)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeSessionTopicKey(stored.SessionID), storage.MarshalSessionTopic(&stored))
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		return tx.SetEntry(entry)
	}, true)
	if err != nil {
		return fmt.Errorf("storing session topic: %w", err)
	}

	r.logger.Debug("stored session topic", "session", stored.SessionID, "topic", stored.Topic)
	return nil
}

// DeleteSessionTopic removes the stored topic for sessionID.
func (r *SessionRepository) DeleteSessionTopic(ctx context.Context, sessionID string) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Delete(makeSessionTopicKey(sessionID))
	}, true)
}

// Close is a no-op. The backend is owned and closed by the caller.
func (r *SessionRepository) Close() error {
	return nil
}
