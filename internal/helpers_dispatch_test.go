package internal_test

import (
	"context"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrymomot/dispatch/internal"
)

type noteEntity struct {
	props map[string]any
	isNew bool
	reset bool
}

func (e *noteEntity) IsNew() bool { return e.isNew }
func (e *noteEntity) Reset() {
	e.reset = true
	e.props = map[string]any{}
}
func (e *noteEntity) SetProperties(props map[string]any) {
	if e.props == nil {
		e.props = map[string]any{}
	}
	maps.Copy(e.props, props)
}

type noteModel struct {
	state  *internal.ModelState
	entity *noteEntity
}

func newNoteModel() *noteModel {
	return &noteModel{
		state:  internal.NewModelState("id"),
		entity: &noteEntity{isNew: true},
	}
}

func (m *noteModel) State() internal.State { return m.state }

func (m *noteModel) Fetch(context.Context) (internal.Entity, error) { return m.entity, nil }

// noteController is renderable and modellable.
type noteController struct {
	*internal.BaseController
	model *noteModel
	calls []string
}

func newNoteController(model *noteModel) *noteController {
	c := &noteController{model: model}
	c.BaseController = internal.NewBaseController("note", internal.WithOwner(c))
	c.Register("render", c.Render)
	for _, a := range []string{"browse", "read", "add", "edit", "delete", "archive"} {
		c.Register(a, func(*internal.Context) (any, error) {
			c.calls = append(c.calls, a)
			return c.model.entity, nil
		})
	}
	return c
}

func (c *noteController) Render(*internal.Context) (any, error) {
	c.calls = append(c.calls, "render")
	return "rendered", nil
}

func (c *noteController) Model() internal.Model { return c.model }

// noteFixture registers a note controller whose state is filled from the query.
type noteFixture struct {
	last  *noteController
	model *noteModel
}

func (f *noteFixture) factory(ctx *internal.Context) (internal.Controller, error) {
	f.model = newNoteModel()
	if id := ctx.Request.Query.Get("id"); id != "" {
		f.model.state.Set("id", id)
		if ctx.Request.Query.Get("exists") == "1" {
			f.model.entity.isNew = false
		}
	}
	f.last = newNoteController(f.model)
	return f.last, nil
}

// pingController is neither renderable nor modellable.
type pingController struct {
	*internal.BaseController
}

func newPingController(*internal.Context) (internal.Controller, error) {
	c := &pingController{}
	c.BaseController = internal.NewBaseController("ping", internal.WithOwner(c))
	c.Register("ping", func(*internal.Context) (any, error) { return "pong", nil })
	return c, nil
}

func newNoteDispatcher(t *testing.T, f *noteFixture, opts ...internal.DispatcherOption) *internal.DispatcherConfig {
	t.Helper()
	base := []internal.DispatcherOption{
		internal.WithAuthenticators(),
		internal.WithController("notes", f.factory),
		internal.WithController("ping", newPingController),
		internal.WithDefaultController("note"),
	}
	return internal.NewDispatcherConfig(append(base, opts...)...)
}

func serve(cfg *internal.DispatcherConfig, r *http.Request) (*httptest.ResponseRecorder, *internal.Dispatcher) {
	w := httptest.NewRecorder()
	d := internal.NewDispatcher(cfg)
	d.Serve(w, r)
	return w, d
}

func jsonRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}
