package ai

import (
	"context"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder keeps recent query embeddings in an LRU cache.
// Errors are never cached.
type CachingEmbedder struct {
	inner  Embedder
	cache  *lru.Cache[string, []float32]
	logger *slog.Logger
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps inner with an LRU cache of size entries.
// A non-positive size returns inner unchanged.
func NewCachingEmbedder(inner Embedder, size int) (Embedder, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachingEmbedder{
		inner:  inner,
		cache:  cache,
		logger: slog.Default().With("component", "query-embedding-cache"),
	}, nil
}

// EmbedText returns a cached embedding for text or delegates to the wrapped embedder.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}
	if vec, ok := c.cache.Get(text); ok {
		c.logger.Debug("query embedding cache hit", "length", len(text))
		return copyVector(vec), nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, copyVector(vec))
	return vec, nil
}

// Len returns the number of cached embeddings.
func (c *CachingEmbedder) Len() int {
	return c.cache.Len()
}

func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
