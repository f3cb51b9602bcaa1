package admission

import "strings"

// PathClassification categorizes a request path for the gating policy.
type PathClassification int

const (
	// Protected pages require an authenticated session.
	Protected PathClassification = iota
	// Public pages are reachable without a session.
	Public
	// AuthOnly pages are for anonymous visitors only (login, registration).
	AuthOnly
	// ApiPublic paths are API endpoints open without a session.
	ApiPublic
)

// String returns the classification name.
func (c PathClassification) String() string {
	switch c {
	case Public:
		return "public"
	case AuthOnly:
		return "auth_only"
	case ApiPublic:
		return "api_public"
	default:
		return "protected"
	}
}

// PathClassifier matches stripped paths against the configured allowlists.
// Classification is deterministic given only the path string, independent
// of method or headers.
type PathClassifier struct {
	locale            *LocaleResolver
	apiPublicPrefixes []string
	publicPaths       []string
	authOnlyPaths     []string
}

// NewPathClassifier creates a classifier using the given locale resolver
// for prefix stripping.
func NewPathClassifier(locale *LocaleResolver, cfg Config) *PathClassifier {
	return &PathClassifier{
		locale:            locale,
		apiPublicPrefixes: cfg.APIPublicPrefixes,
		publicPaths:       cfg.PublicPaths,
		authOnlyPaths:     cfg.AuthOnlyPaths,
	}
}

// Classify strips any recognized locale prefix, then tests in order:
// API-public prefixes → public allowlist (exact or one trailing segment) →
// auth-only list. First match wins; no match yields Protected.
func (pc *PathClassifier) Classify(path string) PathClassification {
	stripped := pc.locale.StripLocale(path)

	for _, prefix := range pc.apiPublicPrefixes {
		if strings.HasPrefix(stripped, prefix) {
			return ApiPublic
		}
	}

	for _, public := range pc.publicPaths {
		if matchesWithTrailingSegment(stripped, public) {
			return Public
		}
	}

	for _, authOnly := range pc.authOnlyPaths {
		if stripped == authOnly {
			return AuthOnly
		}
	}

	return Protected
}

// matchesWithTrailingSegment reports whether path equals pattern or is
// pattern plus exactly one additional segment, e.g. "/posts" matches
// "/posts" and "/posts/hello-world" but not "/posts/a/b".
func matchesWithTrailingSegment(path, pattern string) bool {
	if path == pattern {
		return true
	}
	if !strings.HasPrefix(path, pattern+"/") {
		return false
	}
	rest := path[len(pattern)+1:]
	return rest != "" && !strings.Contains(rest, "/")
}
