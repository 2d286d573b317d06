package internal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/command"
	"github.com/dmitrymomot/dispatch/pkg/event"
)

type hooks struct {
	command.HandlerBase[*internal.Context]
}

func newHooks(p command.Priority) *hooks {
	return &hooks{HandlerBase: command.NewHandlerBase[*internal.Context](p)}
}

func newTestContext(t *testing.T, r *http.Request) *internal.Context {
	t.Helper()
	if r == nil {
		r = httptest.NewRequest(http.MethodGet, "/", nil)
	}
	return internal.NewContext(context.Background(), internal.NewRequest(r, "/"), nil, nil, nil)
}

type greeter struct {
	*internal.BaseController
	denied map[string]internal.Permission
}

func newGreeter(opts ...internal.ControllerOption) *greeter {
	g := &greeter{denied: map[string]internal.Permission{}}
	g.BaseController = internal.NewBaseController("greeter", append([]internal.ControllerOption{internal.WithOwner(g)}, opts...)...)
	g.Register("render", g.Render)
	g.Register("hello", func(*internal.Context) (any, error) { return "hello", nil })
	return g
}

func (g *greeter) Render(*internal.Context) (any, error) { return "rendered", nil }

func (g *greeter) CanExecute(ctx *internal.Context, action string) internal.Permission {
	if p, ok := g.denied[action]; ok {
		return p
	}
	return g.BaseController.CanExecute(ctx, action)
}

func TestBaseControllerExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs before, action and after", func(t *testing.T) {
		t.Parallel()

		var seen []string
		h := newHooks(command.PriorityNormal)
		h.On("before.hello", func(ctx *internal.Context) (command.Result, error) {
			seen = append(seen, ctx.Name())
			return command.Continue(), nil
		})
		h.On("after.hello", func(ctx *internal.Context) (command.Result, error) {
			seen = append(seen, ctx.Name()+":"+ctx.Result.(string))
			ctx.Result = "hello, world"
			return command.Continue(), nil
		})

		g := newGreeter(internal.WithControllerBehaviors(h))
		ctx := newTestContext(t, nil)

		res, err := g.Execute("HELLO", ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello, world", res)
		assert.Equal(t, []string{"before.hello", "after.hello:hello"}, seen)
	})

	t.Run("break in before vetoes the action", func(t *testing.T) {
		t.Parallel()

		called := false
		g := newGreeter()
		g.Register("wave", func(*internal.Context) (any, error) {
			called = true
			return "wave", nil
		})
		h := newHooks(command.PriorityNormal)
		h.On("before.wave", func(*internal.Context) (command.Result, error) {
			return command.Break(false), nil
		})
		require.NoError(t, g.AddBehavior(h))

		ctx := newTestContext(t, nil)
		ctx.Result = "previous"
		res, err := g.Execute("wave", ctx)
		require.NoError(t, err)
		assert.False(t, called)
		assert.Equal(t, "previous", res)
	})

	t.Run("unknown action is not implemented", func(t *testing.T) {
		t.Parallel()

		_, err := newGreeter().Execute("missing", newTestContext(t, nil))
		require.Error(t, err)
		assert.Equal(t, http.StatusNotImplemented, internal.StatusOf(err))
	})

	t.Run("empty action is not implemented", func(t *testing.T) {
		t.Parallel()

		_, err := newGreeter().Execute("  ", newTestContext(t, nil))
		assert.Equal(t, http.StatusNotImplemented, internal.StatusOf(err))
	})

	t.Run("action error is returned", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		g := newGreeter()
		g.Register("fail", func(*internal.Context) (any, error) { return nil, boom })

		_, err := g.Execute("fail", newTestContext(t, nil))
		require.ErrorIs(t, err, boom)
	})
}

func TestBaseControllerNestedExecuteRestoresContext(t *testing.T) {
	t.Parallel()

	g := newGreeter()
	var inner, outer []any
	g.Register("outer", func(ctx *internal.Context) (any, error) {
		outer = append(outer, ctx.Name(), ctx.Subject())
		if _, err := g.Execute("hello", ctx); err != nil {
			return nil, err
		}
		outer = append(outer, ctx.Name(), ctx.Subject())
		return "outer", nil
	})
	h := newHooks(command.PriorityNormal)
	h.On("before.hello", func(ctx *internal.Context) (command.Result, error) {
		inner = append(inner, ctx.Name())
		return command.Continue(), nil
	})
	require.NoError(t, g.AddBehavior(h))

	ctx := newTestContext(t, nil)
	ctx.SetName("root")
	ctx.SetSubject("dispatcher")

	_, err := g.Execute("outer", ctx)
	require.NoError(t, err)

	assert.Equal(t, []any{"before.hello"}, inner)
	assert.Equal(t, []any{"before.outer", g, "before.outer", g}, outer)
	assert.Equal(t, "root", ctx.Name())
	assert.Equal(t, "dispatcher", ctx.Subject())
}

func TestPermissible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		permission internal.Permission
		status     int
		message    string
	}{
		{"denied", internal.PermissionDenied, http.StatusForbidden, `Action "Hello" not allowed`},
		{"forbidden", internal.PermissionForbidden, http.StatusForbidden, `Action "Hello" not allowed`},
		{"unauthorized", internal.PermissionUnauthorized, http.StatusUnauthorized, `Action "Hello" requires authentication`},
		{"not implemented", internal.PermissionNotImplemented, http.StatusNotImplemented, `Action "Hello" not implemented`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGreeter()
			g.denied["hello"] = tt.permission

			_, err := g.Execute("hello", newTestContext(t, nil))
			require.Error(t, err)
			httpErr := internal.AsHTTPError(err)
			require.NotNil(t, httpErr)
			assert.Equal(t, tt.status, httpErr.StatusCode())
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}

	t.Run("require authentic", func(t *testing.T) {
		t.Parallel()

		g := newGreeter()
		g.RequireAuthentic("hello")

		ctx := newTestContext(t, nil)
		_, err := g.Execute("hello", ctx)
		assert.Equal(t, http.StatusUnauthorized, internal.StatusOf(err))

		ctx.User.SetID("u1")
		res, err := g.Execute("hello", ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello", res)
	})
}

func TestBaseControllerActions(t *testing.T) {
	t.Parallel()

	g := newGreeter(internal.WithControllerBehaviors(&provider{}))
	g.Register("Add", func(*internal.Context) (any, error) { return "add", nil })

	assert.Equal(t, []string{"add", "export", "hello", "render"}, g.Actions())
	assert.True(t, g.HasAction("EXPORT"))
	assert.Equal(t, internal.PermissionAllowed, g.BaseController.CanExecute(nil, "add"))
	assert.Equal(t, internal.PermissionNotImplemented, g.BaseController.CanExecute(nil, "browse"))

	res, err := g.Execute("export", newTestContext(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "exported", res)
}

type provider struct {
	command.HandlerBase[*internal.Context]
}

func (*provider) ProvidedActions() map[string]internal.ActionFunc {
	return map[string]internal.ActionFunc{
		"export": func(*internal.Context) (any, error) { return "exported", nil },
		"hello":  func(*internal.Context) (any, error) { return "overridden", nil },
	}
}

func TestEventable(t *testing.T) {
	t.Parallel()

	t.Run("publishes before and after", func(t *testing.T) {
		t.Parallel()

		p := event.New()
		var names []string
		record := event.NewListener(func(_ context.Context, e *event.Event, _ *event.Publisher) error {
			names = append(names, e.Name())
			return nil
		})
		require.NoError(t, p.AddListener("greeter.before.hello", record, event.PriorityNormal))
		require.NoError(t, p.AddListener("greeter.after.hello", record, event.PriorityNormal))

		g := newGreeter(internal.WithControllerPublisher(p))
		_, err := g.Execute("hello", newTestContext(t, nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"greeter.before.hello", "greeter.after.hello"}, names)
	})

	t.Run("stopped before event vetoes", func(t *testing.T) {
		t.Parallel()

		p := event.New()
		stop := event.NewListener(func(_ context.Context, e *event.Event, _ *event.Publisher) error {
			e.StopPropagation()
			return nil
		})
		require.NoError(t, p.AddListener("greeter.before.hello", stop, event.PriorityNormal))

		g := newGreeter(internal.WithControllerPublisher(p))
		res, err := g.Execute("hello", newTestContext(t, nil))
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("listener error aborts", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		p := event.New()
		fail := event.NewListener(func(context.Context, *event.Event, *event.Publisher) error { return boom })
		require.NoError(t, p.AddListener("greeter.after.hello", fail, event.PriorityNormal))

		g := newGreeter(internal.WithControllerPublisher(p))
		_, err := g.Execute("hello", newTestContext(t, nil))
		require.ErrorIs(t, err, boom)
	})
}
