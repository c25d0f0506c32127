package ai

import "errors"

var (
	// ErrProviderUnavailable is returned when the embedding provider could not
	// produce an embedding after the retry policy was exhausted or a fatal
	// response was received.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrMissingBaseURL is returned when no provider base URL is configured.
	ErrMissingBaseURL = errors.New("ai config: BaseURL is required")

	// ErrInvalidBackend is returned for an unrecognised backend name.
	ErrInvalidBackend = errors.New("ai config: unknown backend")

	// ErrMissingModel is returned when the openai backend has no model configured.
	ErrMissingModel = errors.New("ai config: Model is required for the openai backend")

	// ErrInvalidRetryPolicy is returned for non-positive retry settings.
	ErrInvalidRetryPolicy = errors.New("ai config: MaxRetries and RetryDelay must be positive")
)
