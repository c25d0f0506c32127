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


// Package retry runs an operation under a bounded, classified retry policy.
//
// Operations mark their failures with Transient or Malformed. Transient
// failures are retried until the attempt budget is exhausted. Malformed
// failures are retried only while the attempt number is below the policy's
// MalformedAttemptLimit. Any unmarked error is fatal and returned at once.
//
// Before each retry the caller waits min(BaseDelay*2^(attempt-1), MaxDelay).
// No wait happens after the final attempt, and cancelling the context aborts
// both the wait and the loop.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultMaxAttempts           = 5
	DefaultBaseDelay             = 300 * time.Millisecond
	DefaultMaxDelay              = 2500 * time.Millisecond
	DefaultMalformedAttemptLimit = 2
)

// Policy configures Do.
type Policy struct {
	MaxAttempts           int
	BaseDelay             time.Duration
	MaxDelay              time.Duration // Zero means DefaultMaxDelay
	MalformedAttemptLimit int           // Zero means DefaultMalformedAttemptLimit

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the policy used for embedding calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:           DefaultMaxAttempts,
		BaseDelay:             DefaultBaseDelay,
		MaxDelay:              DefaultMaxDelay,
		MalformedAttemptLimit: DefaultMalformedAttemptLimit,
	}
}

// Operation is a single attempt. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

type kind int

const (
	kindTransient kind = iota + 1
	kindMalformed
)

type classified struct {
	kind kind
	err  error
}

func (c *classified) Error() string { return c.err.Error() }
func (c *classified) Unwrap() error { return c.err }

// Transient marks err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classified{kind: kindTransient, err: err}
}

// Malformed marks err as a bad response that earns a limited number of retries.
func Malformed(err error) error {
	if err == nil {
		return nil
	}
	return &classified{kind: kindMalformed, err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var c *classified
	return errors.As(err, &c) && c.kind == kindTransient
}

// IsMalformed reports whether err was marked with Malformed.
func IsMalformed(err error) bool {
	var c *classified
	return errors.As(err, &c) && c.kind == kindMalformed
}

// Do runs op until it succeeds, fails fatally, or the attempt budget runs out.
// It returns the number of attempts made and the last error with its
// classification marker removed. Context cancellation is returned as ctx.Err().
func Do(ctx context.Context, p Policy, op Operation) (int, error) {
	if p.MaxAttempts <= 0 {
		return 0, ErrInvalidMaxAttempts
	}
	if p.BaseDelay <= 0 {
		return 0, ErrInvalidBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.MalformedAttemptLimit <= 0 {
		p.MalformedAttemptLimit = DefaultMalformedAttemptLimit
	}

	backoff := goretry.WithCappedDuration(p.MaxDelay, goretry.NewExponential(p.BaseDelay))

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := op(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return attempt, nil
		}

		// A failure caused by the caller's context is never retried.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}

		lastErr = unwrapClassified(err)

		if !shouldRetry(err, attempt, p) {
			return attempt, lastErr
		}

		delay, _ := backoff.Next()
		slog.Debug("operation failed, will retry",
			"attempt", attempt, "maxAttempts", p.MaxAttempts, "delay", delay, "error", lastErr)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}

	return p.MaxAttempts, lastErr
}

func shouldRetry(err error, attempt int, p Policy) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	switch {
	case IsTransient(err):
		return true
	case IsMalformed(err):
		return attempt < p.MalformedAttemptLimit
	default:
		return false
	}
}

func unwrapClassified(err error) error {
	if c, ok := err.(*classified); ok {
		return c.err
	}
	return err
}
