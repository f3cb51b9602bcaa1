package admission

import "strings"

// LocaleResolver derives a target locale from the request path or the
// Accept-Language header, redirecting bare paths to a localized path.
type LocaleResolver struct {
	locales       []string
	defaultLocale string
}

// NewLocaleResolver creates a resolver over the configured locale list.
func NewLocaleResolver(locales []string, defaultLocale string) *LocaleResolver {
	return &LocaleResolver{locales: locales, defaultLocale: defaultLocale}
}

// HasLocalePrefix reports whether path already starts with a known locale
// segment, e.g. "/en" or "/en/posts".
func (lr *LocaleResolver) HasLocalePrefix(path string) bool {
	for _, locale := range lr.locales {
		if path == "/"+locale || strings.HasPrefix(path, "/"+locale+"/") {
			return true
		}
	}
	return false
}

// Resolve returns the localized redirect target for path, or ok=false when
// the path is already locale-prefixed and should pass through unchanged.
func (lr *LocaleResolver) Resolve(path, acceptLanguage string) (target string, ok bool) {
	if lr.HasLocalePrefix(path) {
		return "", false
	}
	return "/" + lr.Detect(acceptLanguage) + path, true
}

// Detect picks a locale from the Accept-Language header.
//
// This is a deliberate approximation of content negotiation: the header is
// lowercased and each configured locale is tested as a substring, first
// match wins in configured-list order. Quality weights (q=) are ignored, so
// "fr-FR,en;q=0.9" matches "fr" over "en" only when "fr" is listed first.
func (lr *LocaleResolver) Detect(acceptLanguage string) string {
	if acceptLanguage == "" {
		return lr.defaultLocale
	}
	header := strings.ToLower(acceptLanguage)
	for _, locale := range lr.locales {
		if strings.Contains(header, strings.ToLower(locale)) {
			return locale
		}
	}
	return lr.defaultLocale
}

// StripLocale removes a recognized locale prefix from path using
// longest-prefix match. A bare "/xx" path maps to root "/".
func (lr *LocaleResolver) StripLocale(path string) string {
	best := ""
	for _, locale := range lr.locales {
		prefix := "/" + locale
		if (path == prefix || strings.HasPrefix(path, prefix+"/")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return path
	}
	stripped := strings.TrimPrefix(path, best)
	if stripped == "" {
		return "/"
	}
	return stripped
}
