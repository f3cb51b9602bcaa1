package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/core/health"
	"github.com/dmitrymomot/inkpress/core/router"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/health/live", health.Liveness[*router.Context])

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/ping", health.NoContent[*router.Context])

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/health/ready", health.Readiness[*router.Context](
			discardLogger(),
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return nil },
		))

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "READY", w.Body.String())
	})

	t.Run("failing check returns 503", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/health/ready", health.Readiness[*router.Context](
			discardLogger(),
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return errors.New("db unreachable") },
		))

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("no checks is ready", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/health/ready", health.Readiness[*router.Context](discardLogger()))

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
