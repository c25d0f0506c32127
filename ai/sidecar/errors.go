package sidecar

import (
	"errors"
	"fmt"

	"github.com/poiesic/civicfaq/ai"
)

// ErrMalformedResponse indicates the provider answered 2xx with a body that
// is not {"embedding": [...]}.
var ErrMalformedResponse = errors.New("malformed embedding response")

// StatusError is a non-2xx HTTP response from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("embedding service failed (%d): %s", e.StatusCode, e.Body)
}

// ProviderError reports that an embedding call failed after the retry
// policy finished. Body holds the last raw response body, when there was one.
type ProviderError struct {
	BaseURL  string
	Attempts int
	Body     string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("could not reach the embedding service at %s after %d attempt(s): %v",
		e.BaseURL, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes every ProviderError match ai.ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == ai.ErrProviderUnavailable
}
