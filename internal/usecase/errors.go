package usecase

import "github.com/cockroachdb/errors"

// Sentinels wrapped by services and handlers. The HTTP layer maps each one to
// a status code; anything else is reported as an internal error.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDependencyUnavailable covers an open circuit breaker or a component
	// the deployment did not configure.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
