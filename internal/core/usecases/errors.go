package usecases

import "errors"

// Sentinel errors mapped to HTTP status codes at the transport layer.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDatesUnavailable   = errors.New("dates unavailable")
	ErrInvalidState       = errors.New("invalid state transition")
)
