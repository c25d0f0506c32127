package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.BaseURL, "base URL has no default")
	assert.Equal(t, BackendSidecar, cfg.Backend)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 300*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.MaxRetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 512, cfg.QueryCacheSize)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithBaseURL("http://127.0.0.1:8001"),
			WithBackend(BackendOpenAI),
			WithModel("text-embedding-3-small"),
			WithAPIKey("secret"),
			WithMaxRetries(3),
			WithRetryDelay(50*time.Millisecond),
			WithTimeout(time.Second),
			WithQueryCacheSize(0),
		)

		assert.Equal(t, "http://127.0.0.1:8001", cfg.BaseURL)
		assert.Equal(t, BackendOpenAI, cfg.Backend)
		assert.Equal(t, "text-embedding-3-small", cfg.Model)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 50*time.Millisecond, cfg.RetryDelay)
		assert.Equal(t, time.Second, cfg.Timeout)
		assert.Equal(t, 0, cfg.QueryCacheSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		backend  Backend
		baseURL  string
		expected string
	}{
		{name: "sidecar trailing slash", backend: BackendSidecar, baseURL: "http://127.0.0.1:8001/", expected: "http://127.0.0.1:8001"},
		{name: "sidecar untouched", backend: BackendSidecar, baseURL: "http://127.0.0.1:8001", expected: "http://127.0.0.1:8001"},
		{name: "openai adds v1", backend: BackendOpenAI, baseURL: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "openai trailing slash", backend: BackendOpenAI, baseURL: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "openai already v1", backend: BackendOpenAI, baseURL: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "empty", backend: BackendOpenAI, baseURL: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Backend: tt.backend, BaseURL: tt.baseURL}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.BaseURL)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid sidecar config", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("http://127.0.0.1:8001/"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://127.0.0.1:8001", cfg.BaseURL)
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := NewConfig()
		assert.ErrorIs(t, cfg.Validate(), ErrMissingBaseURL)
	})

	t.Run("whitespace base url", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("   "))
		assert.ErrorIs(t, cfg.Validate(), ErrMissingBaseURL)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("http://x"), WithBackend("grpc"))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidBackend)
	})

	t.Run("openai without model", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("http://x"), WithBackend(BackendOpenAI), WithModel(""))
		assert.ErrorIs(t, cfg.Validate(), ErrMissingModel)
	})

	t.Run("zero retries", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("http://x"), WithMaxRetries(0))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidRetryPolicy)
	})

	t.Run("zero delay", func(t *testing.T) {
		cfg := NewConfig(WithBaseURL("http://x"), WithRetryDelay(0))
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidRetryPolicy)
	})
}

func TestConfigRetryPolicy(t *testing.T) {
	cfg := NewConfig(WithMaxRetries(3), WithRetryDelay(10*time.Millisecond))
	p := cfg.RetryPolicy()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 2500*time.Millisecond, p.MaxDelay)
	assert.Equal(t, 2, p.MalformedAttemptLimit)
}
