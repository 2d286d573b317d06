package event

import "context"

// Listener receives published events.
type Listener interface {
	HandleEvent(ctx context.Context, e *Event, p *Publisher) error
}

// ListenerFunc adapts a function to a Listener.
// Function values are not comparable, so subscribe them through NewListener.
type ListenerFunc func(ctx context.Context, e *Event, p *Publisher) error

// funcListener gives a ListenerFunc a comparable identity.
type funcListener struct {
	fn ListenerFunc
}

func (l *funcListener) HandleEvent(ctx context.Context, e *Event, p *Publisher) error {
	return l.fn(ctx, e, p)
}

// NewListener wraps fn in a Listener that can be removed and re-prioritised.
func NewListener(fn ListenerFunc) Listener {
	if fn == nil {
		return nil
	}
	return &funcListener{fn: fn}
}
