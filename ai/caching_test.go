package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/ai/mock"
)

func TestCachingEmbedder_HitsSkipProvider(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewCachingEmbedder(inner, 8)
	require.NoError(t, err)

	first, err := embedder.EmbedText(context.Background(), "how do I pay")
	require.NoError(t, err)
	second, err := embedder.EmbedText(context.Background(), "how do I pay")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())
}

func TestCachingEmbedder_ReturnsCopies(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewCachingEmbedder(inner, 8)
	require.NoError(t, err)

	first, err := embedder.EmbedText(context.Background(), "bins")
	require.NoError(t, err)
	first[0] = 42

	second, err := embedder.EmbedText(context.Background(), "bins")
	require.NoError(t, err)
	assert.NotEqual(t, float32(42), second[0])
}

func TestCachingEmbedder_ErrorsNotCached(t *testing.T) {
	inner := mock.NewMockEmbedder()
	fail := true
	inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if fail {
			return nil, ai.ErrProviderUnavailable
		}
		return []float32{1, 0}, nil
	}

	embedder, err := ai.NewCachingEmbedder(inner, 8)
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "school")
	assert.True(t, errors.Is(err, ai.ErrProviderUnavailable))

	fail = false
	vec, err := embedder.EmbedText(context.Background(), "school")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, vec)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachingEmbedder_BlankText(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewCachingEmbedder(inner, 8)
	require.NoError(t, err)

	vec, err := embedder.EmbedText(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, vec)
	assert.Equal(t, 0, inner.CallCount())
}

func TestCachingEmbedder_DisabledReturnsInner(t *testing.T) {
	inner := mock.NewMockEmbedder()
	embedder, err := ai.NewCachingEmbedder(inner, 0)
	require.NoError(t, err)
	assert.Same(t, inner, embedder)
}
