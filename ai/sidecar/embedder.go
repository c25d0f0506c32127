package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/poiesic/civicfaq/ai"
	"github.com/poiesic/civicfaq/retry"
)

// AttemptObserver is notified after every HTTP attempt.
// outcome is one of "success", "transient", "malformed" or "fatal".
type AttemptObserver func(outcome string)

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding *[]float32 `json:"embedding"`
}

// Embedder implements ai.Embedder against the sidecar /embed endpoint.
type Embedder struct {
	client   *resty.Client
	baseURL  string
	policy   retry.Policy
	observer AttemptObserver
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

func newEmbedder(config *ai.Config, client *resty.Client, observer AttemptObserver, logger *slog.Logger) *Embedder {
	return &Embedder{
		client:   client,
		baseURL:  config.BaseURL,
		policy:   config.RetryPolicy(),
		observer: observer,
		logger:   logger.With("component", "sidecar-embedder"),
	}
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}

	e.logger.Debug("generating embedding", "length", len(text))

	var (
		result   []float32
		lastBody string
	)

	policy := e.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		e.logger.Warn("embedding attempt failed, retrying",
			"attempt", attempt, "maxAttempts", policy.MaxAttempts, "delay", delay, "err", err)
	}

	attempts, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		vec, body, err := e.attempt(ctx, text)
		if body != "" {
			lastBody = body
		}
		e.observe(err)
		if err != nil {
			return err
		}
		result = vec
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		e.logger.Error("failed to generate embedding", "attempts", attempts, "err", err)
		return nil, &ProviderError{
			BaseURL:  e.baseURL,
			Attempts: attempts,
			Body:     lastBody,
			Err:      err,
		}
	}

	return result, nil
}

// attempt performs one POST /embed call and returns the decoded vector,
// the raw body and a classified error.
func (e *Embedder) attempt(ctx context.Context, text string) ([]float32, string, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embedRequest{Text: text}).
		Post("/embed")
	if err != nil {
		return nil, "", classifyTransportError(err)
	}

	body := string(resp.Body())
	if !resp.IsSuccess() {
		return nil, body, classifyStatus(resp.StatusCode(), body)
	}

	var decoded embedResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, body, retry.Malformed(fmt.Errorf("%w: %w: %s", ErrMalformedResponse, err, body))
	}
	if decoded.Embedding == nil {
		return nil, body, retry.Malformed(fmt.Errorf("%w: missing 'embedding': %s", ErrMalformedResponse, body))
	}

	return *decoded.Embedding, body, nil
}

func (e *Embedder) observe(err error) {
	if e.observer == nil {
		return
	}
	switch {
	case err == nil:
		e.observer("success")
	case retry.IsTransient(err):
		e.observer("transient")
	case retry.IsMalformed(err):
		e.observer("malformed")
	default:
		e.observer("fatal")
	}
}
