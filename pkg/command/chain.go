package command

import (
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

type entry[C any] struct {
	handler  Handler[C]
	priority Priority
}

// Chain is an ordered collection of handlers executed by command name.
type Chain[C Contextual] struct {
	logger  *slog.Logger
	subject any
	entries []entry[C]
	mu      sync.RWMutex
}

type chainConfig struct {
	logger  *slog.Logger
	subject any
}

// ChainOption configures a Chain.
type ChainOption func(*chainConfig)

// WithSubject makes the chain stamp subject on every context it executes.
func WithSubject(subject any) ChainOption {
	return func(c *chainConfig) {
		c.subject = subject
	}
}

// WithLogger sets the logger used for debug tracing of breaks.
func WithLogger(l *slog.Logger) ChainOption {
	return func(c *chainConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewChain creates an empty chain.
func NewChain[C Contextual](opts ...ChainOption) *Chain[C] {
	cfg := &chainConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Chain[C]{
		logger:  cfg.logger,
		subject: cfg.subject,
	}
}

// Add inserts h using its own priority.
// Adding a handler that is already present is a no-op.
func (c *Chain[C]) Add(h Handler[C]) error {
	if err := validateHandler(h); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(h, h.Priority())
	return nil
}

// AddWithPriority inserts h with an explicit priority.
// Adding a handler that is already present is a no-op and keeps its priority.
func (c *Chain[C]) AddWithPriority(h Handler[C], p Priority) error {
	if err := validateHandler(h); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(h, p)
	return nil
}

// Remove deletes every occurrence of h. It reports whether anything was removed.
func (c *Chain[C]) Remove(h Handler[C]) bool {
	if validateHandler(h) != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = slices.DeleteFunc(c.entries, func(e entry[C]) bool {
		return e.handler == h
	})
	return len(c.entries) != n
}

// Has reports whether h is in the chain.
func (c *Chain[C]) Has(h Handler[C]) bool {
	_, ok := c.Priority(h)
	return ok
}

// Priority returns the priority h was inserted with.
func (c *Chain[C]) Priority(h Handler[C]) (Priority, bool) {
	if validateHandler(h) != nil {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.handler == h {
			return e.priority, true
		}
	}
	return 0, false
}

// SetPriority moves h to priority p, behind handlers already at p.
// Returns false if h is not in the chain.
func (c *Chain[C]) SetPriority(h Handler[C], p Priority) bool {
	if validateHandler(h) != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.entries, func(e entry[C]) bool { return e.handler == h })
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	c.insert(h, p)
	return true
}

// Handlers returns the handlers in execution order.
func (c *Chain[C]) Handlers() []Handler[C] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Handler[C], len(c.entries))
	for i, e := range c.entries {
		out[i] = e.handler
	}
	return out
}

// Len returns the number of handlers.
func (c *Chain[C]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Execute runs the command name against every handler in priority order.
// The first Break stops iteration and is returned. Hook errors are returned
// as-is and stop iteration. Without a break the zero Result is returned.
func (c *Chain[C]) Execute(name string, ctx C) (Result, error) {
	hook, err := ParseHook(name)
	if err != nil {
		return Result{}, err
	}

	ctx.SetName(hook.String())
	if c.subject != nil {
		ctx.SetSubject(c.subject)
	}

	c.mu.RLock()
	entries := slices.Clone(c.entries)
	c.mu.RUnlock()

	for _, e := range entries {
		if !e.handler.Enabled() {
			continue
		}
		fn, ok := e.handler.Lookup(hook)
		if !ok {
			continue
		}
		res, err := fn(ctx)
		if err != nil {
			return Result{}, err
		}
		if res.IsBreak() {
			c.logger.Debug("command chain halted",
				slog.String("command", hook.String()),
				slog.String("priority", e.priority.String()),
			)
			return res, nil
		}
	}

	return Result{}, nil
}

// insert keeps entries sorted by priority, FIFO within a priority. Caller holds the lock.
func (c *Chain[C]) insert(h Handler[C], p Priority) {
	for _, e := range c.entries {
		if e.handler == h {
			return
		}
	}
	i := slices.IndexFunc(c.entries, func(e entry[C]) bool { return e.priority > p })
	if i < 0 {
		i = len(c.entries)
	}
	c.entries = slices.Insert(c.entries, i, entry[C]{handler: h, priority: p})
}

// validateHandler rejects nil handlers and handlers that cannot be compared by identity.
func validateHandler[C any](h Handler[C]) error {
	if h == nil {
		return ErrInvalidHandler
	}
	t := reflect.TypeOf(h)
	if !t.Comparable() {
		return ErrInvalidHandler
	}
	if t.Kind() == reflect.Pointer && reflect.ValueOf(h).IsNil() {
		return ErrInvalidHandler
	}
	return nil
}
