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


package sidecar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/poiesic/civicfaq/ai"
)

// Option configures a Provider.
type Option func(*Provider)

// WithAttemptObserver registers a callback invoked after every HTTP attempt.
func WithAttemptObserver(observer AttemptObserver) Option {
	return func(p *Provider) {
		p.observer = observer
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// Provider implements ai.AIProvider using the embedding sidecar.
type Provider struct {
	config   *ai.Config
	client   *resty.Client
	embedder *Embedder
	observer AttemptObserver
	logger   *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a provider for the sidecar at config.BaseURL.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config, opts ...Option) (ai.AIProvider, error) {
	return newProvider(config, opts...)
}

func newProvider(config *ai.Config, opts ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	base := p.logger
	p.logger = base.With("component", "sidecar-provider")

	p.client = resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(&restyLoggerAdapter{logger: base.With("component", "resty")})

	p.embedder = newEmbedder(config, p.client, p.observer, base)

	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Health calls GET /health. Any failure is reported as false.
func (p *Provider) Health(ctx context.Context) bool {
	resp, err := p.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		p.logger.Debug("health check failed", "err", err)
		return false
	}
	return resp.IsSuccess()
}

// Close releases idle connections held by the HTTP client.
func (p *Provider) Close() error {
	p.logger.Debug("closing sidecar provider")
	p.client.GetClient().CloseIdleConnections()
	return nil
}

// restyLoggerAdapter adapts slog.Logger to resty's Logger interface.
type restyLoggerAdapter struct {
	logger *slog.Logger
}

func (r *restyLoggerAdapter) Errorf(format string, v ...interface{}) {
	r.logger.Error(fmt.Sprintf(format, v...))
}

func (r *restyLoggerAdapter) Warnf(format string, v ...interface{}) {
	r.logger.Warn(fmt.Sprintf(format, v...))
}

func (r *restyLoggerAdapter) Debugf(format string, v ...interface{}) {
	r.logger.Debug(fmt.Sprintf(format, v...))
}
