package notes

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned when no note has the slug.
var ErrNotFound = errors.New("notes: not found")

// Repository stores notes.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]*Note, error)
	Get(ctx context.Context, slug string) (*Note, error)
	Exists(ctx context.Context, slug string) (bool, error)
	Save(ctx context.Context, n *Note) error
	Delete(ctx context.Context, slug string) error
}

// MemoryRepository keeps notes in process. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]Note
	now   func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: make(map[string]Note), now: time.Now}
}

// List returns notes newest first.
func (r *MemoryRepository) List(_ context.Context, limit, offset int) ([]*Note, error) {
	r.mu.RLock()
	all := make([]*Note, 0, len(r.notes))
	for _, n := range r.notes {
		all = append(all, &n)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Note) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	if offset >= len(all) {
		return []*Note{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Get returns a copy of the stored note.
func (r *MemoryRepository) Get(_ context.Context, slug string) (*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

// Exists reports whether slug is taken.
func (r *MemoryRepository) Exists(_ context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.notes[slug]
	return ok, nil
}

// Save inserts or replaces n and marks it stored.
func (r *MemoryRepository) Save(_ context.Context, n *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	n.stored = true
	r.notes[n.Slug] = *n
	return nil
}

// Delete removes the note.
func (r *MemoryRepository) Delete(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[slug]; !ok {
		return ErrNotFound
	}
	delete(r.notes, slug)
	return nil
}
