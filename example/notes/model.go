package notes

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrymomot/dispatch"
)

// Model resolves the note or list addressed by its state.
// A state carrying a slug is unique.
type Model struct {
	repo  Repository
	state *dispatch.ModelState
}

// NewModel creates a model over repo.
func NewModel(repo Repository) *Model {
	return &Model{repo: repo, state: dispatch.NewModelState("slug")}
}

// State implements dispatch.Model.
func (m *Model) State() dispatch.State { return m.state }

// Fetch returns the addressed note, a fresh unsaved note when the slug is
// unknown, or a page of notes.
func (m *Model) Fetch(ctx context.Context) (dispatch.Entity, error) {
	if m.state.IsUnique() {
		return m.note(ctx)
	}

	limit, _ := m.state.Limit()
	offset := 0
	if v, ok := m.state.Get("offset"); ok {
		if s, ok := v.(string); ok {
			offset, _ = strconv.Atoi(s)
		}
	}
	list, err := m.repo.List(ctx, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	return &List{Notes: list, Limit: limit, Offset: max(offset, 0)}, nil
}

func (m *Model) note(ctx context.Context) (*Note, error) {
	v, _ := m.state.Get("slug")
	slug, _ := v.(string)
	n, err := m.repo.Get(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return &Note{Slug: slug}, nil
	}
	return n, err
}
