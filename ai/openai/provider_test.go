package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/civicfaq/ai"
)

func testConfig(baseURL string) *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(ai.BackendOpenAI),
		ai.WithBaseURL(baseURL),
		ai.WithModel("test-embed"),
		ai.WithMaxRetries(3),
		ai.WithRetryDelay(time.Millisecond),
	)
}

func TestNewProvider_Validates(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithBackend(ai.BackendOpenAI)))
	assert.ErrorIs(t, err, ai.ErrMissingBaseURL)
}

func TestEmbedText_BlankTextSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	p, err := NewProvider(testConfig(server.URL))
	require.NoError(t, err)

	vec, err := p.Embedder().EmbedText(context.Background(), " ")
	require.NoError(t, err)
	assert.Empty(t, vec)
	assert.Equal(t, int32(0), calls.Load())
}

func TestEmbedText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"test-embed","data":[{"object":"embedding","index":0,"embedding":[0.5,0.5]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer server.Close()

	p, err := NewProvider(testConfig(server.URL))
	require.NoError(t, err)

	vec, err := p.Embedder().EmbedText(context.Background(), "bulky waste")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestEmbedText_ServerErrorsExhaustRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p, err := NewProvider(testConfig(server.URL))
	require.NoError(t, err)

	_, err = p.Embedder().EmbedText(context.Background(), "bulky waste")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrProviderUnavailable))

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Attempts)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p, err := NewProvider(testConfig(server.URL))
	require.NoError(t, err)
	assert.True(t, p.Health(context.Background()))
	require.NoError(t, p.Close())
}
