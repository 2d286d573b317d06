package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/event"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

func newNotesApp(f *noteFixture, opts ...internal.Option) *internal.App {
	base := []internal.Option{
		internal.WithControllers(map[string]internal.ControllerFactory{
			"notes": f.factory,
			"ping":  newPingController,
		}),
		internal.WithDispatcher("/app",
			internal.WithAuthenticators(),
			internal.WithDefaultController("note"),
		),
	}
	return internal.New(append(base, opts...)...)
}

func TestAppMountsDispatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"mount root", "/app", http.StatusOK, "rendered"},
		{"mount root with slash", "/app/", http.StatusOK, "rendered"},
		{"path selects the view", "/app/notes?id=1", http.StatusOK, "rendered"},
		{"plain controller through path", "/app/ping?_action=ping", http.StatusOK, "pong"},
		{"unknown view", "/app/missing", http.StatusNotFound, ""},
		{"outside the mount", "/other", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newNotesApp(&noteFixture{})
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}

	t.Run("query view wins over the path", func(t *testing.T) {
		t.Parallel()

		app := newNotesApp(&noteFixture{})
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/missing?view=ping&_action=ping", nil))
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("mount config", func(t *testing.T) {
		t.Parallel()

		app := newNotesApp(&noteFixture{})
		cfg, ok := app.Dispatcher("/app")
		require.True(t, ok)
		assert.Same(t, app.Registry(), cfg.Registry())
		assert.True(t, app.Registry().Has("note"))
	})
}

func TestAppSharedServices(t *testing.T) {
	t.Parallel()

	pub := event.New()
	var events atomic.Int32
	require.NoError(t, pub.AddListener("dispatcher.before.get", event.NewListener(func(context.Context, *event.Event, *event.Publisher) error {
		events.Add(1)
		return nil
	}), event.PriorityNormal))

	app := newNotesApp(&noteFixture{},
		internal.WithSession(session.NewMemoryStore()),
		internal.WithPublisher(pub),
	)
	cfg, _ := app.Dispatcher("/app")
	require.NotNil(t, cfg.Sessions())
	assert.Same(t, pub, cfg.Publisher())

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), events.Load())
}

func TestAppMiddlewareAndHealth(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) internal.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	app := newNotesApp(&noteFixture{},
		internal.WithMiddleware(mw("first"), mw("second")),
		internal.WithHealthChecks(
			internal.WithReadinessCheck("db", func(context.Context) error { return errors.New("down") }),
		),
	)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, order)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAppStaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"public/app.css": {Data: []byte("body{}")}}
	app := internal.New(internal.WithStaticFiles("/static/", fsys, "public"))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body{}", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := newNotesApp(&noteFixture{})
	addrCh := make(chan net.Addr, 1)
	var started, stopped atomic.Bool

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run("127.0.0.1:0",
			internal.WithContext(ctx),
			internal.OnListening(func(a net.Addr) { addrCh <- a }),
			internal.StartupHook(func(context.Context) error { started.Store(true); return nil }),
			internal.ShutdownHook(func(context.Context) error { stopped.Store(true); return nil }),
			internal.ShutdownTimeout(time.Second),
		)
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	assert.True(t, started.Load())

	resp, err := http.Get("http://" + addr.String() + "/app")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "rendered", string(body))

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, stopped.Load())
}

func TestAppRunStartupHookError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := internal.New().Run("127.0.0.1:0", internal.StartupHook(func(context.Context) error { return boom }))
	require.ErrorIs(t, err, boom)
}

func TestWithControllersRejectsDuplicates(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		internal.New(
			internal.WithControllers(map[string]internal.ControllerFactory{"notes": newPingController}),
			internal.WithControllers(map[string]internal.ControllerFactory{"note": newPingController}),
		)
	})
}
