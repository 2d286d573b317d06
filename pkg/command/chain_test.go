package command_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/command"
)

type testContext struct {
	*command.Context
	visited []string
}

func newTestContext() *testContext {
	return &testContext{Context: command.NewContext(nil)}
}

type recorder struct {
	command.HandlerBase[*testContext]
	name string
}

func newRecorder(name string, p command.Priority, hooks ...string) *recorder {
	r := &recorder{HandlerBase: command.NewHandlerBase[*testContext](p), name: name}
	for _, h := range hooks {
		r.On(h, func(ctx *testContext) (command.Result, error) {
			ctx.visited = append(ctx.visited, r.name)
			return command.Continue(), nil
		})
	}
	return r
}

func TestChainExecuteOrder(t *testing.T) {
	t.Parallel()

	t.Run("runs handlers by priority", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		require.NoError(t, chain.Add(newRecorder("A", command.PriorityLowest, "before.render")))
		require.NoError(t, chain.Add(newRecorder("B", command.PriorityHighest, "before.render")))
		require.NoError(t, chain.Add(newRecorder("C", command.PriorityNormal, "before.render")))

		ctx := newTestContext()
		res, err := chain.Execute("before.render", ctx)
		require.NoError(t, err)
		require.False(t, res.IsBreak())
		require.Equal(t, []string{"B", "C", "A"}, ctx.visited)
	})

	t.Run("keeps insertion order on equal priority", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		for _, n := range []string{"one", "two", "three"} {
			require.NoError(t, chain.Add(newRecorder(n, command.PriorityNormal, "after.get")))
		}

		ctx := newTestContext()
		_, err := chain.Execute("after.get", ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"one", "two", "three"}, ctx.visited)
	})

	t.Run("skips handlers without the hook", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		require.NoError(t, chain.Add(newRecorder("A", command.PriorityNormal, "before.render")))
		require.NoError(t, chain.Add(newRecorder("B", command.PriorityNormal, "after.render")))

		ctx := newTestContext()
		res, err := chain.Execute("before.render", ctx)
		require.NoError(t, err)
		require.False(t, res.IsBreak())
		require.Equal(t, []string{"A"}, ctx.visited)
	})

	t.Run("sets command name on context", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		var seen string
		r := newRecorder("A", command.PriorityNormal)
		r.On("before.render", func(ctx *testContext) (command.Result, error) {
			seen = ctx.Name()
			return command.Continue(), nil
		})
		require.NoError(t, chain.Add(r))

		_, err := chain.Execute("Before.Render", newTestContext())
		require.NoError(t, err)
		require.Equal(t, "before.render", seen)
	})

	t.Run("stamps chain subject", func(t *testing.T) {
		t.Parallel()
		subject := &struct{ id int }{id: 7}
		chain := command.NewChain[*testContext](command.WithSubject(subject))

		ctx := newTestContext()
		_, err := chain.Execute("before.render", ctx)
		require.NoError(t, err)
		require.Same(t, subject, ctx.Subject())
	})
}

func TestChainExecuteBreak(t *testing.T) {
	t.Parallel()

	t.Run("falsy break stops the chain", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		first := newRecorder("first", command.PriorityHigh, "before.edit")
		middle := newRecorder("middle", command.PriorityNormal)
		middle.On("before.edit", func(ctx *testContext) (command.Result, error) {
			ctx.visited = append(ctx.visited, "middle")
			return command.Break(false), nil
		})
		last := newRecorder("last", command.PriorityLow, "before.edit")
		require.NoError(t, chain.Add(last))
		require.NoError(t, chain.Add(middle))
		require.NoError(t, chain.Add(first))

		ctx := newTestContext()
		res, err := chain.Execute("before.edit", ctx)
		require.NoError(t, err)
		require.True(t, res.IsBreak())
		require.Equal(t, false, res.Value())
		require.Equal(t, []string{"first", "middle"}, ctx.visited)
	})

	t.Run("errors stop the chain unchanged", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		chain := command.NewChain[*testContext]()
		failing := newRecorder("failing", command.PriorityHigh)
		failing.On("before.edit", func(*testContext) (command.Result, error) {
			return command.Continue(), boom
		})
		require.NoError(t, chain.Add(failing))
		require.NoError(t, chain.Add(newRecorder("after", command.PriorityLow, "before.edit")))

		ctx := newTestContext()
		_, err := chain.Execute("before.edit", ctx)
		require.ErrorIs(t, err, boom)
		require.Empty(t, ctx.visited)
	})

	t.Run("invalid command name", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		_, err := chain.Execute("render", newTestContext())
		require.ErrorIs(t, err, command.ErrInvalidCommand)
	})
}

func TestChainMembership(t *testing.T) {
	t.Parallel()

	t.Run("add is idempotent", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		r := newRecorder("A", command.PriorityNormal, "before.get")
		require.NoError(t, chain.Add(r))
		require.NoError(t, chain.AddWithPriority(r, command.PriorityHighest))
		require.Equal(t, 1, chain.Len())

		p, ok := chain.Priority(r)
		require.True(t, ok)
		require.Equal(t, command.PriorityNormal, p)
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		r := newRecorder("A", command.PriorityNormal, "before.get")
		require.NoError(t, chain.Add(r))
		require.True(t, chain.Has(r))
		require.True(t, chain.Remove(r))
		require.False(t, chain.Has(r))
		require.False(t, chain.Remove(r))
	})

	t.Run("set priority reorders", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		a := newRecorder("A", command.PriorityHigh, "before.get")
		b := newRecorder("B", command.PriorityNormal, "before.get")
		require.NoError(t, chain.Add(a))
		require.NoError(t, chain.Add(b))
		require.True(t, chain.SetPriority(a, command.PriorityLowest))

		ctx := newTestContext()
		_, err := chain.Execute("before.get", ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"B", "A"}, ctx.visited)
		require.False(t, chain.SetPriority(newRecorder("C", command.PriorityNormal), command.PriorityHigh))
	})

	t.Run("disabled handlers are skipped", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		a := newRecorder("A", command.PriorityNormal, "before.get")
		b := newRecorder("B", command.PriorityNormal, "before.get")
		require.NoError(t, chain.Add(a))
		require.NoError(t, chain.Add(b))
		a.Disable()

		ctx := newTestContext()
		_, err := chain.Execute("before.get", ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"B"}, ctx.visited)
		require.Len(t, chain.Handlers(), 2)
	})

	t.Run("rejects nil handler", func(t *testing.T) {
		t.Parallel()
		chain := command.NewChain[*testContext]()
		require.ErrorIs(t, chain.Add(nil), command.ErrInvalidHandler)

		var r *recorder
		require.ErrorIs(t, chain.Add(r), command.ErrInvalidHandler)
	})
}

func TestChainConcurrentUse(t *testing.T) {
	t.Parallel()

	chain := command.NewChain[*testContext]()
	require.NoError(t, chain.Add(newRecorder("A", command.PriorityNormal, "before.get")))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = chain.Execute("before.get", newTestContext())
		}()
		go func() {
			defer wg.Done()
			r := newRecorder("tmp", command.PriorityLow, "before.get")
			_ = chain.Add(r)
			chain.Remove(r)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, chain.Len())
}
