// Package pg provides PostgreSQL connection management built on pgx, with
// retry logic, goose-based schema migrations, and health checking.
//
// Connect establishes a pgxpool.Pool with backoff retries and verifies
// connectivity with a ping before returning. Migrate applies pending goose
// migrations through the pgx stdlib adapter so no separate database/sql
// connection is opened. Healthcheck returns a func(context.Context) error
// suitable for readiness probes.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil && !errors.Is(err, pg.ErrMigrationsDirNotFound) {
//		return err
//	}
//
// The error classification helpers (IsNotFoundError, IsDuplicateKeyError,
// IsForeignKeyViolationError, IsTxClosedError) give repositories stable
// checks for the common PostgreSQL failure modes.
//
// WithTx and TxFromContext propagate a pgx.Tx through context so
// repositories can participate in a caller-managed transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx) // safe after commit
//
//	ctx = pg.WithTx(ctx, tx)
//	if err := repo.Create(ctx, post); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
package pg
