package demo

import "errors"

var (
	// ErrSessionNotFound is returned when no demo user matches a token.
	ErrSessionNotFound = errors.New("demo: session not found")

	// ErrSessionExpired is returned when a matching session has lapsed.
	ErrSessionExpired = errors.New("demo: session expired")

	// ErrCreateFailed wraps store failures during demo tenant creation.
	ErrCreateFailed = errors.New("demo: failed to create demo session")
)
