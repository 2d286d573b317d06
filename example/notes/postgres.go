package notes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/dispatch/pkg/db"
)

// PostgresRepository stores notes in the notes table.
// Concurrent reads of the same slug share one query.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	group singleflight.Group
}

// NewPostgresRepository wraps pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const noteColumns = `slug, title, body, author, created_at, updated_at`

// List returns notes newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*Note, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes ORDER BY created_at DESC, slug LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanNote)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the note with slug.
func (r *PostgresRepository) Get(ctx context.Context, slug string) (*Note, error) {
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(slug, func() (any, error) {
		rows, err := r.pool.Query(flightCtx, `SELECT `+noteColumns+` FROM notes WHERE slug = $1`, slug)
		if err != nil {
			return nil, err
		}
		n, err := pgx.CollectExactlyOneRow(rows, scanNote)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return n, err
	})
	if err != nil {
		return nil, err
	}
	// Callers may mutate the note; hand each one its own copy.
	n := *v.(*Note)
	return &n, nil
}

// Exists reports whether slug is taken.
func (r *PostgresRepository) Exists(ctx context.Context, slug string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notes WHERE slug = $1)`, slug).Scan(&ok)
	return ok, err
}

// Save upserts n and refreshes its timestamps from the row.
func (r *PostgresRepository) Save(ctx context.Context, n *Note) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO notes (slug, title, body, author)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO UPDATE
			SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = now()
			RETURNING created_at, updated_at`,
			n.Slug, n.Title, n.Body, n.Author,
		).Scan(&n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return err
		}
		n.stored = true
		r.group.Forget(n.Slug)
		return nil
	})
}

// Delete removes the note.
func (r *PostgresRepository) Delete(ctx context.Context, slug string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.group.Forget(slug)
	return nil
}

func scanNote(row pgx.CollectableRow) (*Note, error) {
	n := &Note{stored: true}
	if err := row.Scan(&n.Slug, &n.Title, &n.Body, &n.Author, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return n, nil
}
