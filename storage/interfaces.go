package storage

import (
	"context"
	"time"

	"github.com/poiesic/civicfaq/core"
)

// Clock returns the current time. Repositories use it for expiry decisions.
type Clock func() time.Time

// SystemClock is the Clock backed by time.Now.
func SystemClock() time.Time {
	return time.Now()
}

// SessionRepository stores the remembered topic of each session.
// Implementations must be thread-safe and support concurrent access.
type SessionRepository interface {
	// GetSessionTopic returns the stored topic for sessionID.
	// Returns ErrNotFound if nothing is stored or the entry has expired.
	GetSessionTopic(ctx context.Context, sessionID string) (*core.SessionTopic, error)

	// PutSessionTopic stores topic for a session, replacing any previous value.
	// UpdatedAt and ExpiresAt are set by the repository.
	// The topic must pass core.ValidateSessionTopic.
	PutSessionTopic(ctx context.Context, topic *core.SessionTopic) error

	// DeleteSessionTopic removes the stored topic for sessionID.
	// Deleting a missing session is not an error.
	DeleteSessionTopic(ctx context.Context, sessionID string) error

	// Close releases resources held by the repository.
	Close() error
}
