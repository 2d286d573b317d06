package session

import (
	"context"
	"time"
)

// Store persists sessions. Sessions are looked up by token (the cookie
// value) and removed by id, so a rotated token never orphans a record.
type Store interface {
	// Create saves a session that has never been stored.
	Create(ctx context.Context, s *Session) error
	// Get loads the session for token: ErrNotFound when unknown, ErrExpired
	// when past ExpiresAt.
	Get(ctx context.Context, token string) (*Session, error)
	// Update replaces a stored session, following a token rotation.
	Update(ctx context.Context, s *Session) error
	// Delete removes the session with id. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	// DeleteByUserID removes every session of userID.
	DeleteByUserID(ctx context.Context, userID string) error
	// Touch records activity without rewriting the payload.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
