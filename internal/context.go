package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// Context carries one request through the dispatcher and controller chains.
// It implements context.Context by delegating to the request context, so it
// can be passed to stores and models directly.
//
// A Context belongs to the goroutine serving its request and is not safe for
// concurrent use.
type Context struct {
	*command.Context

	ctx      context.Context
	logger   *slog.Logger
	includer includer

	Request  *Request
	Response *Response
	User     *User

	// Result is the value produced by the last executed action.
	Result any
	// Param is an action argument, e.g. the redirect target or the error for fail.
	Param any
	// Exception is the error being answered by the fail action.
	Exception error
}

// NewContext creates a request context.
func NewContext(ctx context.Context, req *Request, resp *Response, user *User, log *slog.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if resp == nil {
		resp = NewResponse()
	}
	if user == nil {
		user = NewUser(nil)
	}
	if log == nil {
		log = logger.NewNope()
	}
	return &Context{
		Context:  command.NewContext(nil),
		ctx:      ctx,
		logger:   log,
		Request:  req,
		Response: resp,
		User:     user,
	}
}

type includer interface {
	Include(ctx *Context, target string) (any, error)
}

// Include renders target ("name?query") with a fragment dispatcher and
// returns the result without sending it.
func (c *Context) Include(target string) (any, error) {
	if c.includer == nil {
		return nil, ErrNotImplemented("Include is not available outside a dispatcher")
	}
	return c.includer.Include(c, target)
}

// Deadline implements context.Context.
func (c *Context) Deadline() (time.Time, bool) { return c.ctx.Deadline() }

// Done implements context.Context.
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Err implements context.Context.
func (c *Context) Err() error { return c.ctx.Err() }

// Value implements context.Context.
func (c *Context) Value(key any) any { return c.ctx.Value(key) }

// StdContext returns the underlying request context.
func (c *Context) StdContext() context.Context { return c.ctx }

// WithLogAttrs tags every record logged through this context with attrs.
func (c *Context) WithLogAttrs(attrs ...slog.Attr) {
	c.ctx = logger.WithAttrs(c.ctx, attrs...)
}

// Logger returns the request logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// IsAuthentic reports whether the user was explicitly authenticated for this request.
func (c *Context) IsAuthentic() bool { return c.User.IsAuthentic(true) }

// SetAuthentic marks the user as authenticated for this request.
func (c *Context) SetAuthentic() { c.User.SetAuthentic() }
