package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisStore persists sessions in Redis as JSON.
//
// Keys:
//
//	{prefix}:token:{token} -> session JSON (expires with the session)
//	{prefix}:id:{id}       -> token
//	{prefix}:user:{uid}    -> set of session ids
type RedisStore struct {
	client redis.UniversalClient
	group  singleflight.Group
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: "session".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store.
// The client should be obtained from pkg/redis.Open.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "session"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements Store.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidToken
	}
	return r.write(ctx, s, "")
}

// Get implements Store. Concurrent lookups of the same token share one round trip.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	// The shared lookup outlives any single caller; each caller still
	// returns as soon as its own context is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(token, func() (any, error) {
		data, err := r.client.Get(flightCtx, r.tokenKey(token)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("session: redis get: %w", err)
		}
		return data, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	var s Session
	if err := json.Unmarshal(res.Val.([]byte), &s); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return &s, nil
}

// Update implements Store. A rotated token replaces the previous one.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	prev, err := r.client.Get(ctx, r.idKey(s.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("session: redis get: %w", err)
	}
	if prev == s.Token {
		prev = ""
	}
	return r.write(ctx, s, prev)
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("session: redis get: %w", err)
	}
	return r.client.Del(ctx, r.tokenKey(token), r.idKey(id)).Err()
}

// DeleteByUserID implements Store.
func (r *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: redis smembers: %w", err)
	}
	var errs []error
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.client.Del(ctx, r.userKey(userID)).Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Touch implements Store.
func (r *RedisStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	token, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("session: redis get: %w", err)
	}
	s, err := r.Get(ctx, token)
	if err != nil {
		return err
	}
	s.LastActiveAt = lastActiveAt
	return r.write(ctx, s, "")
}

func (r *RedisStore) write(ctx context.Context, s *Session, staleToken string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if staleToken != "" {
			p.Del(ctx, r.tokenKey(staleToken))
		}
		p.Set(ctx, r.tokenKey(s.Token), data, ttl)
		p.Set(ctx, r.idKey(s.ID), s.Token, ttl)
		if s.IsAuthenticated() {
			p.SAdd(ctx, r.userKey(*s.UserID), s.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis write: %w", err)
	}
	return nil
}

func (r *RedisStore) tokenKey(token string) string { return r.prefix + ":token:" + token }
func (r *RedisStore) idKey(id string) string       { return r.prefix + ":id:" + id }
func (r *RedisStore) userKey(uid string) string    { return r.prefix + ":user:" + uid }

var _ Store = (*RedisStore)(nil)
