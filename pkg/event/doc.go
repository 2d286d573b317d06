// Package event provides a synchronous, priority-ordered event publisher.
//
// Listeners subscribe to an event name with a [Priority]. [Publisher.Publish]
// calls them in ascending priority order; listeners with the same priority
// run in subscription order. A listener can stop propagation, in which case
// no further listener sees the event.
//
//	pub := event.New()
//	l := event.NewListener(func(ctx context.Context, e *event.Event, p *event.Publisher) error {
//	    if e.Attr("id") == nil {
//	        e.StopPropagation()
//	    }
//	    return nil
//	})
//	_ = pub.AddListener("notes.before.edit", l, event.PriorityHigh)
//
//	e, err := pub.Publish(ctx, "notes.before.edit", map[string]any{"id": 1}, nil)
//
// A disabled publisher returns a nil event and never calls listeners.
package event
