package pg

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending schema migrations from cfg.MigrationsPath using
// goose. The pool is bridged to database/sql via the pgx stdlib adapter, so
// migrations reuse the pool's connections instead of opening new ones.
// Returns ErrMigrationsDirNotFound when the directory does not exist, letting
// callers treat a missing directory as "nothing to migrate".
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	if cfg.MigrationsPath == "" {
		return ErrMigrationPathNotProvided
	}

	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return ErrMigrationsDirNotFound
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	goose.SetLogger(slogGooseLogger{log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.WarnContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	return nil
}

// slogGooseLogger adapts slog to the goose.Logger interface.
type slogGooseLogger struct {
	log *slog.Logger
}

func (l slogGooseLogger) Fatalf(format string, v ...any) {
	l.log.Error("migration failed", "message", sprintf(format, v...))
}

func (l slogGooseLogger) Printf(format string, v ...any) {
	l.log.Info(sprintf(format, v...))
}
