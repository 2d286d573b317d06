package notes

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/sanitizer"
	"github.com/dmitrymomot/dispatch/pkg/slug"
)

const maxSlugLength = 64

// Controller serves notes. Reads are public; writes need a signed-in user
// and only the author may change or delete a note.
type Controller struct {
	*dispatch.BaseController
	model *Model
	repo  Repository
	san   *sanitizer.Sanitizer
}

// Factory returns the controller factory registered as "notes". opts are
// applied to every controller it builds.
func Factory(repo Repository, san *sanitizer.Sanitizer, log *slog.Logger, opts ...dispatch.ControllerOption) dispatch.ControllerFactory {
	if san == nil {
		san = sanitizer.New()
	}
	if log == nil {
		log = logger.NewNope()
	}
	return func(ctx *dispatch.Context) (dispatch.Controller, error) {
		c := &Controller{model: NewModel(repo), repo: repo, san: san}
		if s := ctx.Request.Query.Get("slug"); s != "" {
			c.model.state.Set("slug", s)
		}
		if o := ctx.Request.Query.Get("offset"); o != "" {
			c.model.state.Set("offset", o)
		}

		c.BaseController = dispatch.NewBaseController("note", append([]dispatch.ControllerOption{
			dispatch.WithOwner(c),
			dispatch.WithControllerLogger(log),
		}, opts...)...)
		c.Register("render", c.Render)
		c.Register("add", c.add)
		c.Register("edit", c.edit)
		c.Register("delete", c.delete)
		c.RequireAuthentic("add", "edit", "delete")
		return c, nil
	}
}

// Model implements dispatch.Modellable.
func (c *Controller) Model() dispatch.Model { return c.model }

// Render implements dispatch.Renderable.
func (c *Controller) Render(ctx *dispatch.Context) (any, error) {
	entity, err := c.model.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if entity.IsNew() {
		return nil, dispatch.ErrNotFound("Note not found")
	}
	v, err := render(ctx.Request.Format() == "json", entity)
	if err != nil {
		return nil, dispatch.ErrInternal("Could not render note", dispatch.WithError(err))
	}
	return v, nil
}

func (c *Controller) add(ctx *dispatch.Context) (any, error) {
	n, _ := dispatch.ContextValue[dispatch.Entity](ctx, dispatch.EntityKey).(*Note)
	if n == nil {
		n = &Note{}
	}
	n.SetProperties(formValues(ctx.Request.Data))
	if err := c.clean(n); err != nil {
		return nil, err
	}

	if n.Slug == "" {
		s, err := c.freeSlug(ctx, n.Title)
		if err != nil {
			return nil, err
		}
		n.Slug = s
	}
	n.Author = ctx.User.ID()

	if err := c.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	c.model.state.Set("slug", n.Slug)
	ctx.Response.SetStatus(http.StatusCreated, "Created")
	ctx.Response.Headers.Set("Content-Location", ctx.Request.BasePath()+"/notes?slug="+n.Slug)
	ctx.Logger().InfoContext(ctx, "note created", slog.String("slug", n.Slug))
	return n, nil
}

func (c *Controller) edit(ctx *dispatch.Context) (any, error) {
	n, _ := dispatch.ContextValue[dispatch.Entity](ctx, dispatch.EntityKey).(*Note)
	if n == nil {
		fetched, err := c.owned(ctx)
		if err != nil {
			return nil, err
		}
		n = fetched
	} else if err := c.authorize(ctx, n); err != nil {
		return nil, err
	}

	n.SetProperties(formValues(ctx.Request.Data))
	if err := c.clean(n); err != nil {
		return nil, err
	}
	if err := c.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *Controller) delete(ctx *dispatch.Context) (any, error) {
	n, err := c.owned(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.repo.Delete(ctx, n.Slug); err != nil {
		return nil, err
	}
	ctx.Response.SetStatus(http.StatusNoContent, "No Content")
	return nil, nil
}

// owned fetches the addressed note and checks the current user wrote it.
func (c *Controller) owned(ctx *dispatch.Context) (*Note, error) {
	if !c.model.state.IsUnique() {
		return nil, dispatch.ErrRequestInvalid("Note slug is required")
	}
	entity, err := c.model.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	n := entity.(*Note)
	if n.IsNew() {
		return nil, dispatch.ErrNotFound("Note not found")
	}
	return n, c.authorize(ctx, n)
}

func (c *Controller) authorize(ctx *dispatch.Context, n *Note) error {
	if n.Author != "" && n.Author != ctx.User.ID() {
		return dispatch.ErrForbidden("Only the author can change this note")
	}
	return nil
}

func (c *Controller) clean(n *Note) error {
	n.Title = c.san.StripHTML(n.Title)
	n.Body = c.san.SanitizeHTML(n.Body)
	if n.Title == "" {
		return dispatch.ErrRequestInvalid("Title is required")
	}
	return nil
}

// freeSlug derives a slug from title, adding a random suffix when taken.
func (c *Controller) freeSlug(ctx *dispatch.Context, title string) (string, error) {
	s := slug.Make(title, slug.MaxLength(maxSlugLength))
	taken, err := c.repo.Exists(ctx, s)
	if err != nil {
		return "", err
	}
	if s == "" || taken {
		s = slug.Unique(title, slug.MaxLength(maxSlugLength))
	}
	return s, nil
}
