package posts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/inkpress/integration/database/pg"
)

// Repository provides persistent storage for posts.
type Repository interface {
	Create(ctx context.Context, params CreatePostParams) (Post, error)
	GetBySlug(ctx context.Context, slug string) (Post, error)
	List(ctx context.Context, params ListPostsParams) ([]Post, error)
	Update(ctx context.Context, id uuid.UUID, params UpdatePostParams) (Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreatePostParams carries the fields required to create a post.
type CreatePostParams struct {
	AuthorID  uuid.UUID
	Slug      string
	Title     string
	Body      string
	Published bool
}

// UpdatePostParams carries the mutable post fields.
type UpdatePostParams struct {
	Title     string
	Body      string
	Published bool
}

// ListPostsParams filters and pages the post listing. A zero Limit defaults
// to 20; Limit is capped at 100.
type ListPostsParams struct {
	AuthorID      uuid.UUID
	PublishedOnly bool
	Limit         int
	Offset        int
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed post repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const postColumns = `id, author_id, slug, title, body, published, created_at, updated_at`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Slug, &p.Title, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return p, nil
}

func (r *pgRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *pgRepository) Create(ctx context.Context, params CreatePostParams) (Post, error) {
	const q = `INSERT INTO posts (id, author_id, slug, title, body, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + postColumns

	p, err := scanPost(r.queryRow(ctx, q,
		uuid.New(), params.AuthorID, params.Slug, params.Title, params.Body, params.Published, time.Now()))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Post{}, ErrSlugTaken
		}
		return Post{}, err
	}
	return p, nil
}

func (r *pgRepository) GetBySlug(ctx context.Context, slug string) (Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	return scanPost(r.queryRow(ctx, q, slug))
}

func (r *pgRepository) List(ctx context.Context, params ListPostsParams) ([]Post, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	const q = `SELECT ` + postColumns + ` FROM posts
		WHERE ($1::uuid IS NULL OR author_id = $1)
		  AND (NOT $2::bool OR published)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var authorID *uuid.UUID
	if params.AuthorID != uuid.Nil {
		authorID = &params.AuthorID
	}

	rows, err := r.pool.Query(ctx, q, authorID, params.PublishedOnly, limit, max(params.Offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *pgRepository) Update(ctx context.Context, id uuid.UUID, params UpdatePostParams) (Post, error) {
	const q = `UPDATE posts SET title = $2, body = $3, published = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns
	return scanPost(r.queryRow(ctx, q, id, params.Title, params.Body, params.Published))
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM posts WHERE id = $1`

	var affected int64
	if tx, ok := pg.TxFromContext(ctx); ok {
		tag, err := tx.Exec(ctx, q, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
	} else {
		tag, err := r.pool.Exec(ctx, q, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
	}

	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
