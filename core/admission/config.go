package admission

import "errors"

// Config defines the policy inputs for the admission pipeline.
type Config struct {
	// Locales is the recognized locale list in scan order; DefaultLocale
	// is used when Accept-Language matches none of them.
	Locales       []string
	DefaultLocale string

	// APIPrefix marks paths that take the API branch, skipping locale
	// resolution and authentication gating.
	APIPrefix string

	// APIPublicPrefixes is the prefix allowlist for API-public paths
	// (auth endpoints, health checks, webhooks, monitoring).
	APIPublicPrefixes []string

	// PublicPaths lists pages reachable without a session. An entry
	// matches its exact path or the path plus one trailing segment.
	PublicPaths []string

	// AuthOnlyPaths lists pages only anonymous visitors should see
	// (login, registration, password reset).
	AuthOnlyPaths []string

	// AllowedOrigins is the CORS origin allowlist. "*" permits any origin.
	AllowedOrigins []string

	// CSRF double-submit cookie and header names.
	CSRFCookieName string
	CSRFHeaderName string

	// LoginPath receives unauthenticated visitors of protected pages;
	// HomePath receives authenticated visitors of auth-only pages.
	LoginPath string
	HomePath  string

	// ExposeStack includes a stack trace in the diagnostic response for
	// unhandled pipeline failures. Keep off outside development.
	ExposeStack bool
}

// DefaultConfig returns a Config with conventional values.
// Path lists and origins start empty; callers fill them in.
func DefaultConfig() Config {
	return Config{
		Locales:        []string{"en"},
		DefaultLocale:  "en",
		APIPrefix:      "/api",
		CSRFCookieName: "csrf_token",
		CSRFHeaderName: "X-CSRF-Token",
		LoginPath:      "/login",
		HomePath:       "/",
	}
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if len(c.Locales) == 0 || c.DefaultLocale == "" {
		return errors.New("admission: locale list and default locale are required")
	}
	found := false
	for _, l := range c.Locales {
		if l == c.DefaultLocale {
			found = true
			break
		}
	}
	if !found {
		return errors.New("admission: default locale must be in the locale list")
	}
	if c.CSRFCookieName == "" || c.CSRFHeaderName == "" {
		return errors.New("admission: CSRF cookie and header names are required")
	}
	if c.LoginPath == "" || c.HomePath == "" {
		return errors.New("admission: login and home paths are required")
	}
	return nil
}
