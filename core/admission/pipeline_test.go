package admission_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkpress/core/admission"
)

func testPipelineConfig() admission.Config {
	cfg := admission.DefaultConfig()
	cfg.Locales = []string{"en", "fr"}
	cfg.DefaultLocale = "en"
	cfg.APIPublicPrefixes = []string{"/auth/", "/health"}
	cfg.PublicPaths = []string{"/", "/about", "/posts"}
	cfg.AuthOnlyPaths = []string{"/login", "/register"}
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	return cfg
}

func staticLookup(result admission.SessionResult) admission.SessionLookup {
	return admission.SessionLookupFunc(func(ctx context.Context, r *http.Request) admission.SessionResult {
		return result
	})
}

// run executes the decision against a recorder, rendering either the
// terminal response or a decorated pass-through.
func run(t *testing.T, decision admission.Decision, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	resp := decision.Terminal
	if resp == nil {
		resp = decision.Decorate(func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusOK)
			_, err := w.Write([]byte("handler"))
			return err
		})
	}
	require.NoError(t, resp(rec, req))
	return rec
}

func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "valid"})
	req.Header.Set("X-CSRF-Token", "valid")
	return req
}

func TestPipelineLocaleRedirect(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9")

	rec := run(t, p.Admit(context.Background(), req), req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/fr/posts", rec.Header().Get("Location"))
}

func TestPipelineLocalePrefixedPassesThrough(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	req := httptest.NewRequest(http.MethodGet, "/en/posts", nil)
	decision := p.Admit(context.Background(), req)
	require.Nil(t, decision.Terminal)

	rec := run(t, decision, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "handler", rec.Body.String())
}

func TestPipelineCSRFRejection(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionFound()))

	t.Run("missing token rejects unsafe request", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/en/posts", nil)
		req.Header.Set("Origin", "https://app.example.com")

		rec := run(t, p.Admit(context.Background(), req), req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		// Rejection deliberately carries no CORS decoration.
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		// But it still ensures a CSRF cookie for the next attempt.
		require.NotEmpty(t, rec.Result().Cookies())
		assert.Equal(t, "csrf_token", rec.Result().Cookies()[0].Name)
	})

	t.Run("mismatched token rejects", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/en/posts", nil)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "a"})
		req.Header.Set("X-CSRF-Token", "b")

		rec := run(t, p.Admit(context.Background(), req), req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("safe method passes without token", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/en/about", nil)
		decision := p.Admit(context.Background(), req)
		assert.Nil(t, decision.Terminal)
	})

	t.Run("matching token passes", func(t *testing.T) {
		t.Parallel()

		req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/posts", nil))
		decision := p.Admit(context.Background(), req)
		assert.Nil(t, decision.Terminal)
	})
}

func TestPipelinePreflightShortCircuit(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "https://app.example.com")

	decision := p.Admit(context.Background(), req)
	require.NotNil(t, decision.Terminal)

	rec := run(t, decision, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPipelineAPIBranchSkipsLocaleAndGating(t *testing.T) {
	t.Parallel()

	// No session and no locale prefix: a page path would redirect, the
	// API branch must not.
	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Accept-Language", "fr-FR")

	decision := p.Admit(context.Background(), req)
	assert.Nil(t, decision.Terminal)
}

func TestPipelineAuthenticatedOnAuthOnlyPageRedirectsHome(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionFound()))

	req := httptest.NewRequest(http.MethodGet, "/en/login", nil)
	rec := run(t, p.Admit(context.Background(), req), req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestPipelineUnauthenticatedOnProtectedPageRedirectsToLogin(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
	rec := run(t, p.Admit(context.Background(), req), req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fen%2Fdashboard", rec.Header().Get("Location"))
}

func TestPipelineLookupFailureGatesLikeNoSession(t *testing.T) {
	t.Parallel()

	failed := staticLookup(admission.SessionLookupFailed(errors.New("auth service down")))
	p := admission.NewPipeline(testPipelineConfig(), failed)

	t.Run("public page stays reachable", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/en/about", nil)
		decision := p.Admit(context.Background(), req)
		assert.Nil(t, decision.Terminal)
	})

	t.Run("protected page redirects to login", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
		rec := run(t, p.Admit(context.Background(), req), req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?callbackUrl=%2Fen%2Fdashboard", rec.Header().Get("Location"))
	})
}

func TestPipelinePassThroughIsDecorated(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionFound()))

	req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
	req.Header.Set("Origin", "https://app.example.com")

	decision := p.Admit(context.Background(), req)
	require.Nil(t, decision.Terminal)

	rec := run(t, decision, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, "csrf_token", rec.Result().Cookies()[0].Name)
}

func TestPipelineRecoversFromLookupPanic(t *testing.T) {
	t.Parallel()

	panicking := admission.SessionLookupFunc(func(ctx context.Context, r *http.Request) admission.SessionResult {
		panic("session service blew up")
	})

	t.Run("stack hidden by default", func(t *testing.T) {
		t.Parallel()

		p := admission.NewPipeline(testPipelineConfig(), panicking)
		req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
		rec := run(t, p.Admit(context.Background(), req), req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "internal_error", body["error"])
		assert.Contains(t, body["message"], "session service blew up")
		assert.NotContains(t, body, "stack")
	})

	t.Run("stack exposed when configured", func(t *testing.T) {
		t.Parallel()

		cfg := testPipelineConfig()
		cfg.ExposeStack = true
		p := admission.NewPipeline(cfg, panicking)
		req := httptest.NewRequest(http.MethodGet, "/en/dashboard", nil)
		rec := run(t, p.Admit(context.Background(), req), req)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["stack"])
	})
}

func TestPipelineGatingBeatsLocaleRedirect(t *testing.T) {
	t.Parallel()

	p := admission.NewPipeline(testPipelineConfig(), staticLookup(admission.SessionNotFound()))

	// Bare protected path: both a locale redirect and an auth redirect
	// apply; the auth redirect wins.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := run(t, p.Admit(context.Background(), req), req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", rec.Header().Get("Location"))
}
