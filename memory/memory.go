package memory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/civicfaq/core"
	"github.com/poiesic/civicfaq/storage"
)

// ErrRepositoryRequired is returned when no session repository is provided.
var ErrRepositoryRequired = errors.New("session repository required")

// Memory is the conversation memory used by the dialogue orchestrator.
type Memory struct {
	repo   storage.SessionRepository
	logger *slog.Logger
}

// Option configures a Memory.
type Option func(*Memory)

// WithLogger sets the memory logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) {
		m.logger = logger
	}
}

// New creates a Memory over repo.
func New(repo storage.SessionRepository, opts ...Option) (*Memory, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	m := &Memory{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "conversation-memory")
	return m, nil
}

// LastTopic returns the remembered topic for sessionID or core.UnknownTopic.
func (m *Memory) LastTopic(ctx context.Context, sessionID string) string {
	topic, err := m.repo.GetSessionTopic(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("failed to read session topic", "session", sessionID, "err", err)
		}
		return core.UnknownTopic
	}
	if !core.IsStorableTopic(topic.Topic) {
		return core.UnknownTopic
	}
	return topic.Topic
}

// SetLastTopic remembers topic for sessionID.
// Blank topics and core.UnknownTopic are ignored.
func (m *Memory) SetLastTopic(ctx context.Context, sessionID, topic string) {
	if !core.IsStorableTopic(topic) {
		return
	}
	st := &core.SessionTopic{SessionID: sessionID, Topic: strings.TrimSpace(topic)}
	if err := m.repo.PutSessionTopic(ctx, st); err != nil {
		m.logger.Warn("failed to store session topic", "session", sessionID, "topic", topic, "err", err)
	}
}

// Forget removes the remembered topic for sessionID.
func (m *Memory) Forget(ctx context.Context, sessionID string) {
	if err := m.repo.DeleteSessionTopic(ctx, sessionID); err != nil {
		m.logger.Warn("failed to delete session topic", "session", sessionID, "err", err)
	}
}

// Close closes the underlying repository.
func (m *Memory) Close() error {
	return m.repo.Close()
}
