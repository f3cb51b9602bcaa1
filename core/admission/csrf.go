package admission

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/dmitrymomot/inkpress/core/handler"
)

// CSRFGuard validates double-submit tokens on state-changing requests and
// issues fresh token cookies when absent.
type CSRFGuard struct {
	cookieName string
	headerName string
}

// NewCSRFGuard creates a guard using the configured cookie and header names.
func NewCSRFGuard(cookieName, headerName string) *CSRFGuard {
	return &CSRFGuard{cookieName: cookieName, headerName: headerName}
}

// Validate reports whether the request passes the double-submit check.
// Safe methods (GET, HEAD, OPTIONS) always pass. Unsafe methods pass only
// when a token cookie exists and the parallel header carries the identical
// value: a cross-site attacker can trigger cookie-bearing requests but
// cannot read the cookie to replicate it in a header.
func (g *CSRFGuard) Validate(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}

	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	header := r.Header.Get(g.headerName)
	if header == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) == 1
}

// EnsureToken decorates resp with a newly generated token cookie when the
// inbound request carries none. Issuance happens at response time, not
// request time, so plain GETs without a cookie don't force a write earlier
// in the pipeline.
func (g *CSRFGuard) EnsureToken(r *http.Request, resp handler.Response) handler.Response {
	if resp == nil {
		return nil
	}
	if cookie, err := r.Cookie(g.cookieName); err == nil && cookie.Value != "" {
		return resp
	}

	return func(w http.ResponseWriter, req *http.Request) error {
		token, err := generateToken()
		if err != nil {
			// Token issuance is best-effort; the next request gets
			// another chance.
			return resp(w, req)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     g.cookieName,
			Value:    token,
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		return resp(w, req)
	}
}

// generateToken creates a 32-byte random token, base64url encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
