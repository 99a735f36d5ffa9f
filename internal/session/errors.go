package session

import "errors"

var (
	// ErrSessionNotFound is returned by Store.Get for unknown ids.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrNotReady is returned by Run before all three exports are loaded.
	ErrNotReady = errors.New("session: inputs incomplete")
	// ErrNoResult is returned when publishing a session that has not merged.
	ErrNoResult = errors.New("session: no merge result")
)
