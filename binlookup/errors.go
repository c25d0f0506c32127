package binlookup

import "errors"

var (
	// ErrReadFailed is returned when the schedule file exists but cannot be read.
	ErrReadFailed = errors.New("failed to read bin schedules")

	// ErrParseFailed is returned when the schedule file is not valid JSON.
	ErrParseFailed = errors.New("failed to parse bin schedules")
)
