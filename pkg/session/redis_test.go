package session_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/session"
)

// silentServer accepts connections and never answers.
func silentServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return ln.Addr().String()
}

func TestRedisStoreGetCancellation(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{
		Addr:        silentServer(t),
		Protocol:    2,
		MaxRetries:  -1,
		DialTimeout: time.Second,
		ReadTimeout: 300 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := session.NewRedisStore(client)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Get(canceled, "tok")
	require.ErrorIs(t, err, context.Canceled)

	// Joins the lookup started above, which must not inherit the cancellation.
	_, err = store.Get(context.Background(), "tok")
	require.Error(t, err)
	require.NotErrorIs(t, err, context.Canceled)
	require.ErrorContains(t, err, "session: redis get")
}
