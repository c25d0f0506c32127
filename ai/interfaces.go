package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Empty or whitespace-only text yields a zero-length vector without
	// contacting the provider.
	// Returns an error wrapping ErrProviderUnavailable when the provider
	// cannot produce an embedding, or the context error on cancellation.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// AIProvider owns the embedding service and its transport.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Health reports whether the provider answers its liveness check.
	// Failures of any kind are reported as false.
	Health(ctx context.Context) bool

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
