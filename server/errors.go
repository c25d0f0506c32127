package server

import "errors"

// ErrTurnHandlerRequired is returned when a server is created without a turn handler.
var ErrTurnHandlerRequired = errors.New("turn handler is required")
