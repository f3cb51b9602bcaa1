package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/core/admission"
	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/response"
	"github.com/dmitrymomot/inkpress/core/router"
	"github.com/dmitrymomot/inkpress/middleware"
)

func newAdmissionRouter(t *testing.T, result admission.SessionResult) router.Router[*router.Context] {
	t.Helper()

	cfg := admission.DefaultConfig()
	cfg.Locales = []string{"en"}
	cfg.DefaultLocale = "en"
	cfg.PublicPaths = []string{"/", "/about"}
	cfg.AuthOnlyPaths = []string{"/login"}
	cfg.AllowedOrigins = []string{"https://app.example.com"}

	lookup := admission.SessionLookupFunc(func(ctx context.Context, r *http.Request) admission.SessionResult {
		return result
	})

	r := router.New[*router.Context]()
	r.Use(middleware.Admission[*router.Context](admission.NewPipeline(cfg, lookup)))

	r.Get("/en/about", func(ctx *router.Context) handler.Response {
		return response.String("about page")
	})
	r.Post("/api/posts", func(ctx *router.Context) handler.Response {
		return response.JSON(map[string]string{"status": "created"})
	})
	r.Get("/en/dashboard", func(ctx *router.Context) handler.Response {
		return response.String("dashboard")
	})

	return r
}

func TestAdmissionPassThroughReachesHandler(t *testing.T) {
	t.Parallel()

	r := newAdmissionRouter(t, admission.SessionNotFound())

	req := httptest.NewRequest(http.MethodGet, "/en/about", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "about page", w.Body.String())
	// Pass-through still gets a CSRF cookie issued.
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestAdmissionTerminalSkipsHandler(t *testing.T) {
	t.Parallel()

	r := newAdmissionRouter(t, admission.SessionNotFound())

	// POST without CSRF token never reaches the route handler.
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "csrf_token_invalid")
}

func TestAdmissionRedirectsUnauthenticated(t *testing.T) {
	t.Parallel()

	r := newAdmissionRouter(t, admission.SessionNotFound())

	req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fen%2Fdashboard", w.Header().Get("Location"))
}

func TestAdmissionAppliesToUnknownRoutes(t *testing.T) {
	t.Parallel()

	r := newAdmissionRouter(t, admission.SessionNotFound())

	// A route the mux does not know still goes through admission: the
	// protected-page redirect fires before the 404 would.
	req := httptest.NewRequest(http.MethodGet, "/en/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestAdmissionCORSDecoration(t *testing.T) {
	t.Parallel()

	r := newAdmissionRouter(t, admission.SessionFound())

	req := httptest.NewRequest(http.MethodGet, "/en/about", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdmissionPanicsWithoutPipeline(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.Admission[*router.Context](nil)
	})
}
