package admission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/core/admission"
)

func TestLocaleResolverResolve(t *testing.T) {
	t.Parallel()

	lr := admission.NewLocaleResolver([]string{"en", "fr", "de"}, "en")

	tests := []struct {
		name           string
		path           string
		acceptLanguage string
		wantTarget     string
		wantRedirect   bool
	}{
		{
			name:         "already prefixed passes through",
			path:         "/en/posts",
			wantRedirect: false,
		},
		{
			name:         "bare locale passes through",
			path:         "/fr",
			wantRedirect: false,
		},
		{
			name:           "header match picks locale",
			path:           "/posts",
			acceptLanguage: "fr-FR,fr;q=0.9",
			wantTarget:     "/fr/posts",
			wantRedirect:   true,
		},
		{
			name:           "no header falls back to default",
			path:           "/posts",
			acceptLanguage: "",
			wantTarget:     "/en/posts",
			wantRedirect:   true,
		},
		{
			name:           "unknown language falls back to default",
			path:           "/posts",
			acceptLanguage: "ja-JP",
			wantTarget:     "/en/posts",
			wantRedirect:   true,
		},
		{
			name:           "configured list order wins over header weights",
			path:           "/",
			acceptLanguage: "fr-FR,en;q=0.9",
			wantTarget:     "/en/",
			wantRedirect:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, ok := lr.Resolve(tt.path, tt.acceptLanguage)
			assert.Equal(t, tt.wantRedirect, ok)
			if tt.wantRedirect {
				assert.Equal(t, tt.wantTarget, target)
			}
		})
	}
}

func TestLocaleResolverStripLocale(t *testing.T) {
	t.Parallel()

	lr := admission.NewLocaleResolver([]string{"en", "fr"}, "en")

	tests := []struct {
		path string
		want string
	}{
		{"/en/login", "/login"},
		{"/fr/login", "/login"},
		{"/en", "/"},
		{"/login", "/login"},
		{"/", "/"},
		{"/english/login", "/english/login"}, // not a locale segment
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lr.StripLocale(tt.path), "path %s", tt.path)
	}
}

func TestLocaleDetectIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	lr := admission.NewLocaleResolver([]string{"en", "fr"}, "en")
	assert.Equal(t, "fr", lr.Detect("FR-ca"))
}
