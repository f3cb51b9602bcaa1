package admission

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/inkpress/core/handler"
)

// Decision is the pipeline's verdict for one request.
//
// A non-nil Terminal response ends the request (preflight answer, CSRF
// rejection, redirect); it is already fully decorated. Otherwise the
// request passes through, and Decorate must wrap the route handler's
// response so pass-through exits get the same CSRF-cookie and CORS
// treatment as every other exit.
type Decision struct {
	Terminal handler.Response
	Decorate func(handler.Response) handler.Response
}

// Pipeline composes locale resolution, CSRF validation, CORS policy,
// session lookup, and path classification into the admission check every
// inbound request passes before reaching a route handler.
type Pipeline struct {
	cfg        Config
	locale     *LocaleResolver
	csrf       *CSRFGuard
	cors       *CORSPolicy
	classifier *PathClassifier
	sessions   SessionLookup
	log        *slog.Logger
}

// PipelineOption configures optional pipeline collaborators.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger for soft failures and recovered panics.
func WithPipelineLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPipeline creates the admission pipeline. Panics on invalid config:
// a misconfigured pipeline is a programmer error that must fail at startup.
func NewPipeline(cfg Config, sessions SessionLookup, opts ...PipelineOption) *Pipeline {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if sessions == nil {
		panic("admission: session lookup is required")
	}

	locale := NewLocaleResolver(cfg.Locales, cfg.DefaultLocale)
	p := &Pipeline{
		cfg:        cfg,
		locale:     locale,
		csrf:       NewCSRFGuard(cfg.CSRFCookieName, cfg.CSRFHeaderName),
		cors:       NewCORSPolicy(cfg.AllowedOrigins),
		classifier: NewPathClassifier(locale, cfg),
		sessions:   sessions,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classifier exposes the pipeline's path classifier, letting route
// handlers reuse the same policy tables.
func (p *Pipeline) Classifier() *PathClassifier {
	return p.classifier
}

// Admit runs the admission check for r.
//
// API-prefixed paths take the short branch: preflight, CSRF, pass-through.
// Page paths additionally resolve locale, look up the session, and apply
// the gating policy. Unhandled failures inside the pipeline are caught here
// and converted to a diagnostic JSON response instead of crashing the
// request.
func (p *Pipeline) Admit(ctx context.Context, r *http.Request) (decision Decision) {
	decorate := func(resp handler.Response) handler.Response {
		return p.cors.Apply(r, p.csrf.EnsureToken(r, resp))
	}
	decision.Decorate = decorate

	defer func() {
		if rec := recover(); rec != nil {
			p.log.ErrorContext(ctx, "admission pipeline failure",
				"panic", rec,
				"path", r.URL.Path,
				"method", r.Method,
			)
			decision.Terminal = p.diagnosticResponse(rec)
			decision.Decorate = decorate
		}
	}()

	// Preflight answers are terminal for both branches.
	if p.cors.IsPreflight(r) {
		decision.Terminal = p.csrf.EnsureToken(r, p.cors.HandlePreflight(r))
		return decision
	}

	// CSRF rejection deliberately skips CORS decoration: a hard rejection
	// gives a cross-origin caller nothing to read.
	if !p.csrf.Validate(r) {
		decision.Terminal = p.csrf.EnsureToken(r, csrfRejection())
		return decision
	}

	path := r.URL.Path

	// API branch: no locale resolution, no authentication gating.
	if p.isAPIPath(path) {
		return decision
	}

	// Computed up front but returned last: gating redirects take priority
	// over the locale redirect.
	localeTarget, needsLocaleRedirect := p.locale.Resolve(path, r.Header.Get("Accept-Language"))

	result := p.sessions.Lookup(ctx, r)
	if result.Failed() {
		// Lookup failure must never block access to genuinely public
		// pages; gate it exactly like "no session".
		p.log.WarnContext(ctx, "session lookup failed, treating as unauthenticated",
			"path", path,
			"error", result.Err(),
		)
	}

	switch classification := p.classifier.Classify(path); {
	case result.Authenticated() && classification == AuthOnly:
		decision.Terminal = decorate(redirect(p.cfg.HomePath, http.StatusFound))
	case !result.Authenticated() && classification == Protected:
		target := p.cfg.LoginPath + "?callbackUrl=" + url.QueryEscape(path)
		decision.Terminal = decorate(redirect(target, http.StatusFound))
	case needsLocaleRedirect:
		decision.Terminal = decorate(redirect(localeTarget, http.StatusFound))
	}

	return decision
}

func (p *Pipeline) isAPIPath(path string) bool {
	if p.cfg.APIPrefix == "" {
		return false
	}
	return path == p.cfg.APIPrefix || strings.HasPrefix(path, p.cfg.APIPrefix+"/")
}

// diagnosticResponse converts an unhandled pipeline failure into a JSON 500
// carrying the error message, and the stack only when configured. Trading
// information hiding for debuggability is deliberate here; production
// deployments keep ExposeStack off.
func (p *Pipeline) diagnosticResponse(rec any) handler.Response {
	body := map[string]string{
		"error":   "internal_error",
		"message": fmt.Sprint(rec),
	}
	if p.cfg.ExposeStack {
		body["stack"] = string(debug.Stack())
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		return json.NewEncoder(w).Encode(body)
	}
}

func csrfRejection() handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		return json.NewEncoder(w).Encode(map[string]string{
			"error":   "csrf_token_invalid",
			"message": "CSRF token missing or mismatched",
		})
	}
}

func redirect(target string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		http.Redirect(w, r, target, status)
		return nil
	}
}
