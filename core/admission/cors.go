package admission

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/inkpress/core/handler"
)

// CORSPolicy answers preflight requests and decorates responses with
// permitted-origin headers.
type CORSPolicy struct {
	allowOrigins     map[string]bool
	allowMethods     string
	allowHeaders     string
	allowCredentials bool
	maxAge           int
}

// NewCORSPolicy creates a policy from the allowed-origin list.
// An empty list or a "*" entry permits any origin.
func NewCORSPolicy(allowOrigins []string) *CORSPolicy {
	origins := make(map[string]bool, len(allowOrigins))
	for _, origin := range allowOrigins {
		origins[origin] = true
	}
	return &CORSPolicy{
		allowOrigins: origins,
		allowMethods: strings.Join([]string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}, ","),
		allowHeaders: strings.Join([]string{
			"Accept",
			"Accept-Language",
			"Content-Language",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-CSRF-Token",
			"X-Request-ID",
		}, ","),
		allowCredentials: true,
		maxAge:           86400,
	}
}

// IsPreflight reports whether the request is a CORS preflight:
// OPTIONS method with an Origin header present.
func (p *CORSPolicy) IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Origin") != ""
}

// HandlePreflight returns the terminal preflight response with
// allowed-origin/methods/headers from configuration and no body.
func (p *CORSPolicy) HandlePreflight(r *http.Request) handler.Response {
	allowedOrigin, allowed := p.resolveOrigin(r.Header.Get("Origin"))

	return func(w http.ResponseWriter, req *http.Request) error {
		headers := w.Header()
		headers.Add("Vary", "Origin")
		headers.Add("Vary", "Access-Control-Request-Method")
		headers.Add("Vary", "Access-Control-Request-Headers")

		if !allowed {
			w.WriteHeader(http.StatusForbidden)
			return nil
		}

		headers.Set("Access-Control-Allow-Origin", allowedOrigin)
		headers.Set("Access-Control-Allow-Methods", p.allowMethods)
		headers.Set("Access-Control-Allow-Headers", p.allowHeaders)
		// Credentials must not pair with a wildcard origin per the CORS spec.
		if p.allowCredentials && allowedOrigin != "*" {
			headers.Set("Access-Control-Allow-Credentials", "true")
		}
		if p.maxAge > 0 {
			headers.Set("Access-Control-Max-Age", strconv.Itoa(p.maxAge))
		}

		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// Apply decorates resp with CORS headers when the request's Origin is
// present and permitted; otherwise the response is left undecorated,
// which is not a failure.
func (p *CORSPolicy) Apply(r *http.Request, resp handler.Response) handler.Response {
	if resp == nil {
		return nil
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return resp
	}
	allowedOrigin, allowed := p.resolveOrigin(origin)
	if !allowed {
		return resp
	}

	return func(w http.ResponseWriter, req *http.Request) error {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", allowedOrigin)
		if p.allowCredentials && allowedOrigin != "*" {
			headers.Set("Access-Control-Allow-Credentials", "true")
		}
		headers.Add("Vary", "Origin")
		return resp(w, req)
	}
}

// resolveOrigin validates origin against the allowlist.
func (p *CORSPolicy) resolveOrigin(origin string) (string, bool) {
	if len(p.allowOrigins) == 0 || p.allowOrigins["*"] {
		return "*", true
	}
	if p.allowOrigins[origin] {
		return origin, true
	}
	return "", false
}
