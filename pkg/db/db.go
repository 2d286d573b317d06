package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds pool settings. Durations accept Go syntax ("30s", "10m").
type Config struct {
	URL             string        `env:"DATABASE_URL" yaml:"url"`
	MigrationsTable string        `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations" yaml:"migrations_table"`
	MaxConns        int32         `env:"DATABASE_MAX_CONNS" envDefault:"10" yaml:"max_conns"`
	MinConns        int32         `env:"DATABASE_MIN_CONNS" envDefault:"2" yaml:"min_conns"`
	MaxConnIdleTime time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m" yaml:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m" yaml:"max_conn_lifetime"`
	RetryAttempts   int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3" yaml:"retry_attempts"`
	RetryInterval   time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s" yaml:"retry_interval"`
}

// Open connects a pool and pings it. Failed attempts are retried with a
// linearly growing pause until RetryAttempts is spent or ctx ends.
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}

	var lastErr error
	for i := range max(cfg.RetryAttempts, 1) {
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnect, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnect, lastErr)
}

// Healthcheck pings the pool.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrHealthcheck
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheck, err)
		}
		return nil
	}
}

// Shutdown closes the pool; use it as a shutdown hook.
func Shutdown(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
