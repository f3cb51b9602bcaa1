package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/inkpress/core/handler"
)

// Option configures a router during construction.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler sets a custom error handler for the router.
// The handler processes errors returned from handlers and middleware,
// as well as recovered panics.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMiddleware adds global middleware during construction.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		m.middlewares = append(m.middlewares, middlewares...)
	}
}

// WithContextFactory sets a custom context factory for routers using
// a context type other than the default *router.Context.
func WithContextFactory[C handler.Context](factory func(http.ResponseWriter, *http.Request, map[string]string) C) Option[C] {
	return func(m *mux[C]) {
		if factory != nil {
			m.newContext = factory
		}
	}
}

// WithLogger sets the logger used for internal router events,
// such as panics recovered after the response was already written.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}
