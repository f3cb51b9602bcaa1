package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/inkpress/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.7:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for single",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1"},
			remoteAddr: "10.0.0.1:80",
			want:       "198.51.100.1",
		},
		{
			name:       "x-forwarded-for chain takes leftmost",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2, 10.0.0.3"},
			remoteAddr: "10.0.0.1:80",
			want:       "198.51.100.1",
		},
		{
			name: "cloudflare beats x-forwarded-for",
			headers: map[string]string{
				"CF-Connecting-IP": "192.0.2.50",
				"X-Forwarded-For":  "198.51.100.1",
			},
			remoteAddr: "10.0.0.1:80",
			want:       "192.0.2.50",
		},
		{
			name:       "x-real-ip",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			remoteAddr: "10.0.0.1:80",
			want:       "198.51.100.9",
		},
		{
			name:       "invalid header falls through",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr: "203.0.113.7:443",
			want:       "203.0.113.7",
		},
		{
			name:       "unspecified address rejected",
			headers:    map[string]string{"X-Real-IP": "0.0.0.0"},
			remoteAddr: "203.0.113.7:443",
			want:       "203.0.113.7",
		},
		{
			name:       "ipv6",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			remoteAddr: "[::1]:8080",
			want:       "2001:db8::1",
		},
		{
			name:       "malformed remote addr returned raw",
			remoteAddr: "garbage",
			want:       "garbage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}
