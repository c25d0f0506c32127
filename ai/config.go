// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/civicfaq/retry"
)

// Backend selects the embedding provider implementation.
type Backend string

const (
	// BackendSidecar talks to the embedding sidecar contract (POST /embed, GET /health).
	BackendSidecar Backend = "sidecar"

	// BackendOpenAI talks to an OpenAI-compatible /v1/embeddings API.
	BackendOpenAI Backend = "openai"
)

// Config holds configuration for the embedding provider.
type Config struct {
	// BaseURL is the provider's base address. It has no default.
	// Example: "http://127.0.0.1:8001" for the sidecar
	BaseURL string

	// Backend selects the provider implementation.
	// Default: BackendSidecar
	Backend Backend

	// Model is the embedding model identifier (openai backend only).
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string

	// APIKey is sent to OpenAI-compatible services. Local services accept "none".
	APIKey string

	// MaxRetries is the total number of attempts per embedding call.
	// Default: 5
	MaxRetries int

	// RetryDelay is the base backoff delay, doubled per retry and capped at MaxRetryDelay.
	// Default: 300ms
	RetryDelay time.Duration

	// MaxRetryDelay caps a single backoff wait.
	// Default: 2500ms
	MaxRetryDelay time.Duration

	// Timeout bounds a single HTTP attempt.
	// Default: 10s
	Timeout time.Duration

	// QueryCacheSize is the number of query embeddings kept in memory.
	// Zero disables the cache.
	// Default: 512
	QueryCacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the provider base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithBackend sets the provider implementation.
func WithBackend(b Backend) ConfigOption {
	return func(c *Config) {
		c.Backend = b
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key for OpenAI-compatible services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithMaxRetries sets the total number of attempts per call.
func WithMaxRetries(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithQueryCacheSize sets the query embedding cache size. Zero disables it.
func WithQueryCacheSize(n int) ConfigOption {
	return func(c *Config) {
		c.QueryCacheSize = n
	}
}

// DefaultConfig returns a Config with defaults for everything except BaseURL.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendSidecar,
		Model:          "embeddinggemma",
		APIKey:         "none",
		MaxRetries:     retry.DefaultMaxAttempts,
		RetryDelay:     retry.DefaultBaseDelay,
		MaxRetryDelay:  retry.DefaultMaxDelay,
		Timeout:        10 * time.Second,
		QueryCacheSize: 512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("http://127.0.0.1:8001"),
//	    WithMaxRetries(3),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form.
// Trailing slashes are removed from BaseURL. For the openai backend the /v1
// suffix required by OpenAI-compatible APIs is added when missing.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Backend == "" {
		c.Backend = BackendSidecar
	}
	if c.Backend == BackendOpenAI && c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/v1") {
		c.BaseURL += "/v1"
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = retry.DefaultMaxDelay
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	switch c.Backend {
	case BackendSidecar:
	case BackendOpenAI:
		if c.Model == "" {
			return ErrMissingModel
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	if c.MaxRetries < 1 || c.RetryDelay <= 0 {
		return ErrInvalidRetryPolicy
	}
	return nil
}

// RetryPolicy returns the retry policy described by the configuration.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = c.MaxRetries
	p.BaseDelay = c.RetryDelay
	if c.MaxRetryDelay > 0 {
		p.MaxDelay = c.MaxRetryDelay
	}
	return p
}
