package id_test

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/id"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("is a version 7 uuid", func(t *testing.T) {
		t.Parallel()
		u, err := uuid.Parse(id.New())
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), u.Version())
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		t.Parallel()
		const iterations = 1000
		seen := make(map[string]bool, iterations)
		for range iterations {
			v := id.New()
			require.False(t, seen[v], "duplicate id generated: %s", v)
			seen[v] = true
		}
	})
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	t.Run("default size", func(t *testing.T) {
		t.Parallel()
		tok, err := id.NewToken(0)
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		assert.Len(t, raw, id.DefaultTokenSize)
	})

	t.Run("custom size", func(t *testing.T) {
		t.Parallel()
		raw, err := base64.RawURLEncoding.DecodeString(id.MustToken(16))
		require.NoError(t, err)
		assert.Len(t, raw, 16)
	})

	t.Run("tokens differ", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, id.MustToken(0), id.MustToken(0))
	})
}
