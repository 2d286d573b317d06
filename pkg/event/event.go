package event

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// Event is a named notification passed to listeners.
type Event struct {
	createdAt time.Time
	attrs     map[string]any
	target    any
	publisher *Publisher
	id        string
	name      string
	stopped   bool
}

// NewEvent creates an event with a generated id.
func NewEvent(name string, attrs map[string]any, target any) *Event {
	e := &Event{
		id:        uuid.NewString(),
		name:      name,
		createdAt: time.Now(),
		target:    target,
		attrs:     make(map[string]any, len(attrs)),
	}
	maps.Copy(e.attrs, attrs)
	return e
}

// ID returns the event identifier.
func (e *Event) ID() string { return e.id }

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// CreatedAt returns when the event was created.
func (e *Event) CreatedAt() time.Time { return e.createdAt }

// Target returns the object the event is about.
func (e *Event) Target() any { return e.target }

// SetTarget replaces the event target.
func (e *Event) SetTarget(target any) { e.target = target }

// Publisher returns the publisher currently dispatching the event.
func (e *Event) Publisher() *Publisher { return e.publisher }

// Attr returns an attribute or nil.
func (e *Event) Attr(key string) any { return e.attrs[key] }

// SetAttr sets an attribute.
func (e *Event) SetAttr(key string, v any) {
	if e.attrs == nil {
		e.attrs = make(map[string]any)
	}
	e.attrs[key] = v
}

// Attributes returns a copy of the attributes.
func (e *Event) Attributes() map[string]any { return maps.Clone(e.attrs) }

// StopPropagation prevents later listeners from receiving the event.
func (e *Event) StopPropagation() { e.stopped = true }

// CanPropagate reports whether the event is still being delivered.
func (e *Event) CanPropagate() bool { return !e.stopped }
