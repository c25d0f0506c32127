package faq

import "errors"

var (
	// ErrReadFailed is returned when the FAQ file exists but cannot be read.
	ErrReadFailed = errors.New("failed to read FAQ file")

	// ErrParseFailed is returned when the FAQ file is not valid JSON or YAML.
	ErrParseFailed = errors.New("failed to parse FAQ file")

	// ErrInvalidEntry is returned when an entry fails validation.
	ErrInvalidEntry = errors.New("invalid FAQ entry")

	// ErrReloadFuncRequired is returned when a watcher has nothing to notify.
	ErrReloadFuncRequired = errors.New("reload function is required")
)
