package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns a health check function suitable for readiness probes.
// The check performs a lightweight ping without impacting database performance.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return ErrHealthcheckFailed
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func sprintf(format string, v ...any) string {
	return strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
}
