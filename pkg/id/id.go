// Package id generates identifiers and opaque tokens.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// DefaultTokenSize is the number of random bytes in a token.
const DefaultTokenSize = 32

// New returns a time-ordered UUIDv7 string.
// Falls back to a random UUIDv4 if the clock sequence cannot be produced.
func New() string {
	u, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// NewToken returns size random bytes encoded as unpadded URL-safe base64.
// A size <= 0 means DefaultTokenSize.
func NewToken(size int) (string, error) {
	if size <= 0 {
		size = DefaultTokenSize
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("id: read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MustToken is like NewToken but panics on failure.
func MustToken(size int) string {
	t, err := NewToken(size)
	if err != nil {
		panic(err)
	}
	return t
}
