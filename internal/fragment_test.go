package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

// pageController renders a page that embeds another controller.
type pageController struct {
	*internal.BaseController
	target   string
	included any
}

func (p *pageController) factory(*internal.Context) (internal.Controller, error) {
	p.BaseController = internal.NewBaseController("page", internal.WithOwner(p))
	p.Register("render", p.Render)
	return p, nil
}

func (p *pageController) Render(ctx *internal.Context) (any, error) {
	res, err := ctx.Include(p.target)
	if err != nil {
		return nil, err
	}
	p.included = res
	return "page:" + res.(string), nil
}

func TestFragmentInclude(t *testing.T) {
	t.Parallel()

	t.Run("renders the target inside the page", func(t *testing.T) {
		t.Parallel()

		f := &noteFixture{}
		page := &pageController{target: "notes?id=3&limit=500"}
		cfg := newNoteDispatcher(t, f,
			internal.WithController("page", page.factory),
			internal.WithLimit(20, 50),
		)

		w, _ := serve(cfg, httptest.NewRequest(http.MethodGet, "/?view=page&id=9", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "page:rendered", w.Body.String())
		assert.Equal(t, "rendered", page.included)

		require.NotNil(t, f.last)
		assert.Equal(t, []string{"render"}, f.last.calls)
		id, _ := f.model.state.Get("id")
		assert.Equal(t, "3", id)
		limit, ok := f.model.state.Limit()
		require.True(t, ok)
		assert.Equal(t, 50, limit)
	})

	t.Run("view in the target wins", func(t *testing.T) {
		t.Parallel()

		f := &noteFixture{}
		page := &pageController{target: "anything?view=notes"}
		cfg := newNoteDispatcher(t, f, internal.WithController("page", page.factory))

		w, _ := serve(cfg, httptest.NewRequest(http.MethodGet, "/?view=page", nil))
		require.Equal(t, http.StatusOK, w.Code)
		limit, ok := f.model.state.Limit()
		require.True(t, ok)
		assert.Equal(t, internal.DefaultLimit, limit)
	})

	t.Run("unknown target fails the page", func(t *testing.T) {
		t.Parallel()

		page := &pageController{target: "missing"}
		cfg := newNoteDispatcher(t, &noteFixture{}, internal.WithController("page", page.factory))

		w, _ := serve(cfg, httptest.NewRequest(http.MethodGet, "/?view=page", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("direct include", func(t *testing.T) {
		t.Parallel()

		f := &noteFixture{}
		frag := internal.NewFragment(newNoteDispatcher(t, f))
		parent := newTestContext(t, httptest.NewRequest(http.MethodGet, "/?id=1", nil))

		res, err := frag.Include(parent, "notes")
		require.NoError(t, err)
		assert.Equal(t, "rendered", res)
		assert.Same(t, f.last, frag.Controller())

		_, found := f.model.state.Get("id")
		assert.False(t, found)
		assert.Equal(t, "1", parent.Request.Query.Get("id"))
		assert.Nil(t, parent.Result)
	})

	t.Run("only include is supported", func(t *testing.T) {
		t.Parallel()

		frag := internal.NewFragment(nil)
		_, err := frag.Execute("render", newTestContext(t, nil))
		assert.Equal(t, http.StatusNotImplemented, internal.StatusOf(err))
	})

	t.Run("include outside a dispatcher", func(t *testing.T) {
		t.Parallel()

		_, err := newTestContext(t, nil).Include("notes")
		assert.Equal(t, http.StatusNotImplemented, internal.StatusOf(err))
	})
}
