package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/retry"
)

// ErrEmptyResult is returned when the service answers without an embedding.
var ErrEmptyResult = errors.New("embedder returned empty result")

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	baseURL  string
	policy   retry.Policy
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		baseURL:  config.BaseURL,
		policy:   config.RetryPolicy(),
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
// The langchaingo client does not expose status codes, so every
// non-cancellation failure is treated as transient.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	var result []float32
	attempts, err := retry.Do(ctx, e.policy, func(ctx context.Context, attempt int) error {
		vec, err := e.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return retry.Transient(err)
		}
		if vec == nil {
			return retry.Malformed(ErrEmptyResult)
		}
		result = vec
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Error("failed to generate embedding", "attempts", attempts, "err", err)
		return nil, &ProviderError{BaseURL: e.baseURL, Attempts: attempts, Err: err}
	}

	return result, nil
}

// ProviderError reports an embedding failure after retries.
type ProviderError struct {
	BaseURL  string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return "openai embedding failed at " + e.BaseURL + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes every ProviderError match ai.ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool { return target == ai.ErrProviderUnavailable }
