package health

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 5 * time.Second

// Check states.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ErrTimeout is reported for checks still running when the deadline passes.
var ErrTimeout = errors.New("health: check timeout")

// CheckFunc probes one dependency. db.Healthcheck and redis.Healthcheck
// return values of this type.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to probes.
type Checks map[string]CheckFunc

// Report is the result of running all checks.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Healthy reports whether every check passed.
func (r *Report) Healthy() bool { return r.Status == StatusHealthy }

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds a whole run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// Checker runs registered checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  Checks
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Checker holding checks.
func New(checks Checks, opts ...Option) *Checker {
	c := &Checker{
		checks:  make(Checks, len(checks)),
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	maps.Copy(c.checks, checks)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces a check.
func (c *Checker) Register(name string, fn CheckFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.checks[name] = fn
	c.mu.Unlock()
}

// Run executes all checks. A check that does not return before the
// timeout is reported with ErrTimeout.
func (c *Checker) Run(ctx context.Context) *Report {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	if len(checks) == 0 {
		return &Report{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(checks))
		g       errgroup.Group
	)
	for name, check := range checks {
		g.Go(func() error {
			err := probe(ctx, check)
			res := Result{Status: StatusHealthy}
			if err != nil {
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				c.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return err
		})
	}

	status := StatusHealthy
	if g.Wait() != nil {
		status = StatusUnhealthy
	}
	return &Report{Status: status, Checks: results}
}

func probe(ctx context.Context, check CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrTimeout
	}
}
