package event

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"
)

// Publisher dispatches events to subscribed listeners.
type Publisher struct {
	logger    *slog.Logger
	listeners map[string]map[Priority][]Listener
	mu        sync.RWMutex
	disabled  bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithEnabled sets the initial enabled state. Publishers are enabled by default.
func WithEnabled(enabled bool) Option {
	return func(p *Publisher) {
		p.disabled = !enabled
	}
}

// New creates a publisher.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[string]map[Priority][]Listener),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddListener subscribes l to event with priority p.
// Subscribing a listener that is already subscribed to the event is a no-op.
func (p *Publisher) AddListener(event string, l Listener, priority Priority) error {
	if event == "" {
		return ErrInvalidEvent
	}
	if err := validateListener(l); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.add(event, l, priority)
	return nil
}

// RemoveListener unsubscribes l from event.
func (p *Publisher) RemoveListener(event string, l Listener) error {
	if event == "" {
		return ErrInvalidEvent
	}
	if err := validateListener(l); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove(event, l)
	return nil
}

// Listeners returns the listeners of event in delivery order.
func (p *Publisher) Listeners(event string) ([]Listener, error) {
	if event == "" {
		return nil, ErrInvalidEvent
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ordered(event), nil
}

// SetListenerPriority moves l to a new priority, behind listeners already there.
// A listener not yet subscribed is added.
func (p *Publisher) SetListenerPriority(event string, l Listener, priority Priority) error {
	if event == "" {
		return ErrInvalidEvent
	}
	if err := validateListener(l); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove(event, l)
	p.add(event, l, priority)
	return nil
}

// ListenerPriority returns the priority of l for event.
func (p *Publisher) ListenerPriority(event string, l Listener) (Priority, bool, error) {
	if event == "" {
		return 0, false, ErrInvalidEvent
	}
	if err := validateListener(l); err != nil {
		return 0, false, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for priority, bucket := range p.listeners[event] {
		if slices.Contains(bucket, l) {
			return priority, true, nil
		}
	}
	return 0, false, nil
}

// Publish delivers an event to its listeners.
//
// event is either a name or an *Event. When an *Event is passed, attrs are
// merged into it and a non-nil target replaces its target. Delivery stops at
// the first listener error or when a listener stops propagation.
// A disabled publisher returns (nil, nil).
func (p *Publisher) Publish(ctx context.Context, event any, attrs map[string]any, target any) (*Event, error) {
	if !p.IsEnabled() {
		return nil, nil
	}

	var e *Event
	switch v := event.(type) {
	case string:
		if v == "" {
			return nil, ErrInvalidEvent
		}
		e = NewEvent(v, attrs, target)
	case *Event:
		if v == nil || v.name == "" {
			return nil, ErrInvalidEvent
		}
		e = v
		for k, val := range attrs {
			e.SetAttr(k, val)
		}
		if target != nil {
			e.target = target
		}
	default:
		return nil, ErrInvalidEvent
	}

	e.publisher = p

	p.mu.RLock()
	listeners := p.ordered(e.name)
	p.mu.RUnlock()

	for _, l := range listeners {
		if !e.CanPropagate() {
			p.logger.DebugContext(ctx, "event propagation stopped", slog.String("event", e.name))
			break
		}
		if err := l.HandleEvent(ctx, e, p); err != nil {
			return e, err
		}
	}

	return e, nil
}

// Enable turns delivery on.
func (p *Publisher) Enable() { p.SetEnabled(true) }

// Disable turns delivery off.
func (p *Publisher) Disable() { p.SetEnabled(false) }

// SetEnabled sets whether Publish delivers events.
func (p *Publisher) SetEnabled(enabled bool) {
	p.mu.Lock()
	p.disabled = !enabled
	p.mu.Unlock()
}

// IsEnabled reports whether Publish delivers events.
func (p *Publisher) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.disabled
}

// ordered merges priority buckets ascending. Caller holds the lock.
func (p *Publisher) ordered(event string) []Listener {
	buckets := p.listeners[event]
	var out []Listener
	for _, priority := range slices.Sorted(maps.Keys(buckets)) {
		out = append(out, buckets[priority]...)
	}
	return out
}

// remove drops l from every bucket of event. Caller holds the write lock.
// add subscribes l unless it already is. Caller holds the write lock.
func (p *Publisher) add(event string, l Listener, priority Priority) {
	buckets := p.listeners[event]
	if buckets == nil {
		buckets = make(map[Priority][]Listener)
		p.listeners[event] = buckets
	}
	for _, bucket := range buckets {
		if slices.Contains(bucket, l) {
			return
		}
	}
	buckets[priority] = append(buckets[priority], l)
}

func (p *Publisher) remove(event string, l Listener) {
	buckets := p.listeners[event]
	for priority, bucket := range buckets {
		bucket = slices.DeleteFunc(bucket, func(x Listener) bool { return x == l })
		if len(bucket) == 0 {
			delete(buckets, priority)
			continue
		}
		buckets[priority] = bucket
	}
	if len(buckets) == 0 {
		delete(p.listeners, event)
	}
}

func validateListener(l Listener) error {
	if l == nil {
		return ErrInvalidListener
	}
	t := reflect.TypeOf(l)
	if !t.Comparable() {
		return ErrInvalidListener
	}
	if t.Kind() == reflect.Pointer && reflect.ValueOf(l).IsNil() {
		return ErrInvalidListener
	}
	return nil
}
