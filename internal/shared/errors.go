package shared

import "errors"

// Domain error kinds. Store access code wraps driver failures into one of
// these before they reach handlers.
var (
	// ErrValidation indicates the request payload failed presence checks.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrInfrastructure indicates the store or session backend failed.
	ErrInfrastructure = errors.New("infrastructure failure")
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound is returned by session stores for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
)
