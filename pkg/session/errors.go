package session

import "errors"

// Session errors.
var (
	// ErrNotConfigured is returned when session functionality is used
	// but no session store was configured on the app.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrInvalidToken is returned when a session token is invalid.
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrTypeMismatch is returned by Value when the stored value has another type.
	ErrTypeMismatch = errors.New("session: type mismatch")
)
