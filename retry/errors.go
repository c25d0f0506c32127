package retry

import "errors"

// ErrInvalidMaxAttempts is returned when a policy allows fewer than one attempt.
var ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

// ErrInvalidBaseDelay is returned when a policy has a non-positive base delay.
var ErrInvalidBaseDelay = errors.New("base delay must be greater than zero")
