package command

import (
	"maps"

	"github.com/google/uuid"
)

// Contextual is the constraint for chain contexts.
// The chain sets the command name before visiting handlers.
type Contextual interface {
	Name() string
	SetName(name string)
	Subject() any
	SetSubject(subject any)
}

// Context is an embeddable command payload.
// Attributes are shared by reference across all handlers of one execution.
type Context struct {
	attrs   map[string]any
	subject any
	id      string
	name    string
}

// NewContext creates a context raised by subject.
func NewContext(subject any) *Context {
	return &Context{
		id:      uuid.NewString(),
		subject: subject,
		attrs:   make(map[string]any),
	}
}

// ID returns the unique context identifier.
func (c *Context) ID() string { return c.id }

// Name returns the command currently being executed.
func (c *Context) Name() string { return c.name }

// SetName sets the command name.
func (c *Context) SetName(name string) { c.name = name }

// Subject returns the object that raised the command.
func (c *Context) Subject() any { return c.subject }

// SetSubject sets the object that raised the command.
func (c *Context) SetSubject(subject any) { c.subject = subject }

// Get returns an attribute.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// Set stores an attribute.
func (c *Context) Set(key string, v any) {
	if c.attrs == nil {
		c.attrs = make(map[string]any)
	}
	c.attrs[key] = v
}

// Has reports whether an attribute exists.
func (c *Context) Has(key string) bool {
	_, ok := c.attrs[key]
	return ok
}

// Delete removes an attribute.
func (c *Context) Delete(key string) {
	delete(c.attrs, key)
}

// Attributes returns a copy of all attributes.
func (c *Context) Attributes() map[string]any {
	return maps.Clone(c.attrs)
}

// Snapshot captures name and subject. Calling the returned func restores them.
//
//	restore := ctx.Snapshot()
//	defer restore()
func (c *Context) Snapshot() func() {
	name, subject := c.name, c.subject
	return func() {
		c.name = name
		c.subject = subject
	}
}

// Attr is a typed attribute accessor.
// Returns false when the key is missing or holds another type.
func Attr[T any](c *Context, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.attrs[key]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
