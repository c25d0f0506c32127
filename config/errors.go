package config

import "errors"

var (
	// ErrReadFailed is returned when the config file exists but cannot be read.
	ErrReadFailed = errors.New("failed to read config file")

	// ErrParseFailed is returned when the config file is not valid YAML.
	ErrParseFailed = errors.New("failed to parse config file")

	// ErrInvalidEnv is returned when an environment override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment override")

	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
