package event_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/event"
)

func recordingListener(name string, calls *[]string) event.Listener {
	return event.NewListener(func(_ context.Context, _ *event.Event, _ *event.Publisher) error {
		*calls = append(*calls, name)
		return nil
	})
}

func TestPublisherOrdering(t *testing.T) {
	t.Parallel()

	pub := event.New()
	var calls []string
	require.NoError(t, pub.AddListener("note.saved", recordingListener("low", &calls), event.PriorityLow))
	require.NoError(t, pub.AddListener("note.saved", recordingListener("high", &calls), event.PriorityHigh))
	require.NoError(t, pub.AddListener("note.saved", recordingListener("high2", &calls), event.PriorityHigh))
	require.NoError(t, pub.AddListener("note.deleted", recordingListener("other", &calls), event.PriorityHighest))

	e, err := pub.Publish(context.Background(), "note.saved", map[string]any{"id": 42}, "target")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, []string{"high", "high2", "low"}, calls)
	require.Equal(t, "note.saved", e.Name())
	require.Equal(t, 42, e.Attr("id"))
	require.Equal(t, "target", e.Target())
	require.Same(t, pub, e.Publisher())
	require.NotEmpty(t, e.ID())
}

func TestPublisherStopPropagation(t *testing.T) {
	t.Parallel()

	pub := event.New()
	var calls []string
	stopper := event.NewListener(func(_ context.Context, e *event.Event, _ *event.Publisher) error {
		calls = append(calls, "stopper")
		e.StopPropagation()
		return nil
	})
	require.NoError(t, pub.AddListener("x", stopper, event.PriorityHigh))
	require.NoError(t, pub.AddListener("x", recordingListener("late", &calls), event.PriorityLow))

	e, err := pub.Publish(context.Background(), "x", nil, nil)
	require.NoError(t, err)
	require.False(t, e.CanPropagate())
	require.Equal(t, []string{"stopper"}, calls)
}

func TestPublisherListenerError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	pub := event.New()
	var calls []string
	require.NoError(t, pub.AddListener("x", event.NewListener(func(context.Context, *event.Event, *event.Publisher) error {
		return boom
	}), event.PriorityHigh))
	require.NoError(t, pub.AddListener("x", recordingListener("late", &calls), event.PriorityLow))

	_, err := pub.Publish(context.Background(), "x", nil, nil)
	require.ErrorIs(t, err, boom)
	require.Empty(t, calls)
}

func TestPublisherDisabled(t *testing.T) {
	t.Parallel()

	var calls []string
	pub := event.New(event.WithEnabled(false))
	require.NoError(t, pub.AddListener("x", recordingListener("a", &calls), event.PriorityNormal))
	require.False(t, pub.IsEnabled())

	e, err := pub.Publish(context.Background(), "x", nil, nil)
	require.NoError(t, err)
	require.Nil(t, e)
	require.Empty(t, calls)

	pub.Enable()
	e, err = pub.Publish(context.Background(), "x", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Equal(t, []string{"a"}, calls)
}

func TestPublisherMembership(t *testing.T) {
	t.Parallel()

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		t.Parallel()
		pub := event.New()
		var calls []string
		l := recordingListener("a", &calls)
		require.NoError(t, pub.AddListener("x", l, event.PriorityHigh))
		require.NoError(t, pub.AddListener("x", l, event.PriorityLow))

		ls, err := pub.Listeners("x")
		require.NoError(t, err)
		require.Len(t, ls, 1)

		p, ok, err := pub.ListenerPriority("x", l)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, event.PriorityHigh, p)
	})

	t.Run("remove and reprioritise", func(t *testing.T) {
		t.Parallel()
		pub := event.New()
		var calls []string
		a := recordingListener("a", &calls)
		b := recordingListener("b", &calls)
		require.NoError(t, pub.AddListener("x", a, event.PriorityHigh))
		require.NoError(t, pub.AddListener("x", b, event.PriorityNormal))
		require.NoError(t, pub.SetListenerPriority("x", a, event.PriorityLowest))

		_, err := pub.Publish(context.Background(), "x", nil, nil)
		require.NoError(t, err)
		require.Equal(t, []string{"b", "a"}, calls)

		require.NoError(t, pub.RemoveListener("x", b))
		ls, err := pub.Listeners("x")
		require.NoError(t, err)
		require.Equal(t, []event.Listener{a}, ls)

		_, ok, err := pub.ListenerPriority("x", b)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		t.Parallel()
		pub := event.New()
		require.ErrorIs(t, pub.AddListener("x", nil, event.PriorityNormal), event.ErrInvalidListener)
		require.ErrorIs(t, pub.AddListener("", event.NewListener(func(context.Context, *event.Event, *event.Publisher) error { return nil }), event.PriorityNormal), event.ErrInvalidEvent)

		_, err := pub.Publish(context.Background(), 42, nil, nil)
		require.ErrorIs(t, err, event.ErrInvalidEvent)
		_, err = pub.Publish(context.Background(), "", nil, nil)
		require.ErrorIs(t, err, event.ErrInvalidEvent)
	})
}

func TestPublishExistingEvent(t *testing.T) {
	t.Parallel()

	pub := event.New()
	e := event.NewEvent("x", map[string]any{"a": 1}, "old")
	got, err := pub.Publish(context.Background(), e, map[string]any{"b": 2}, "new")
	require.NoError(t, err)
	require.Same(t, e, got)
	require.Equal(t, map[string]any{"a": 1, "b": 2}, got.Attributes())
	require.Equal(t, "new", got.Target())
}

func TestPublisherPriorityChangeDuringPublish(t *testing.T) {
	t.Parallel()

	const rounds = 500
	pub := event.New()
	var delivered atomic.Int64
	l := event.NewListener(func(context.Context, *event.Event, *event.Publisher) error {
		delivered.Add(1)
		return nil
	})
	require.NoError(t, pub.AddListener("tick", l, event.PriorityNormal))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		priorities := []event.Priority{event.PriorityHigh, event.PriorityLow}
		for i := range rounds {
			_ = pub.SetListenerPriority("tick", l, priorities[i%2])
		}
	}()

	for range rounds {
		_, err := pub.Publish(context.Background(), "tick", nil, nil)
		require.NoError(t, err)
	}
	wg.Wait()

	require.Equal(t, int64(rounds), delivered.Load())
	priority, ok, err := pub.ListenerPriority("tick", l)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, event.PriorityLow, priority)
}
