package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/inkpress/integration/database/pg"
)

// Repository provides persistent storage for user accounts.
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error
}

// CreateUserParams carries the fields required to register a user.
type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash []byte
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed user repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *pgRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *pgRepository) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if tx, ok := pg.TxFromContext(ctx); ok {
		tag, err := tx.Exec(ctx, sql, args...)
		return tag.RowsAffected(), err
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	return tag.RowsAffected(), err
}

func (r *pgRepository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	const q = `INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + userColumns

	u, err := scanUser(r.queryRow(ctx, q, uuid.New(), params.Email, params.Name, params.PasswordHash, time.Now()))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (r *pgRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.queryRow(ctx, q, id))
}

func (r *pgRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.queryRow(ctx, q, email))
}

func (r *pgRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (User, error) {
	const q = `UPDATE users SET name = $2, updated_at = now() WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.queryRow(ctx, q, id, name))
}

func (r *pgRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	affected, err := r.exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
