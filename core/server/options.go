package server

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Option adjusts a Server during New, before the listener opens.
type Option func(*Server)

// WithLogger sets the logger for lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithShutdownTimeout bounds how long Stop waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdown = d
	}
}

// WithTLS serves HTTPS with the given TLS configuration.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.srv.TLSConfig = cfg
	}
}

// WithTimeouts overrides the read, write, and idle timeouts.
// Non-positive values keep the defaults.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.srv.ReadTimeout = read
		}
		if write > 0 {
			s.srv.WriteTimeout = write
		}
		if idle > 0 {
			s.srv.IdleTimeout = idle
		}
	}
}
