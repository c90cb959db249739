package server

import "errors"

var (
	// ErrEngineRequired is returned by New when no TurnRunner is configured.
	ErrEngineRequired = errors.New("server: turn runner is required")
)
