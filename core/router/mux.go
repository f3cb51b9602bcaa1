package router

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/inkpress/core/handler"
)

// mux is the private implementation of the Router interface.
type mux[C handler.Context] struct {
	tree         *treeNode[handler.HandlerFunc[C]]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	parent       *mux[C] // for inline groups
	inline       bool
	prefix       string // pattern prefix for sub-routes
	sealed       bool   // routes registered, no more Use allowed
}

// newMux creates a new router instance.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         &treeNode[handler.HandlerFunc[C]]{},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(m)
	}

	// Without a factory only the default *Context type is supported.
	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return m
}

// ServeHTTP implements the http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	params := make(map[string]string)
	node := m.tree.find(path, params)

	ctx := m.newContext(ww, r, params)

	// Recover from panics to prevent server crashes
	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{
				value: p,
				stack: debug.Stack(),
			}

			if ww.Written() {
				// Can't send an error response anymore, just log the panic
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"path", r.URL.Path,
					"method", r.Method,
					"status", ww.Status(),
				)
			} else {
				m.errorHandler(ctx, panicErr)
			}
		}
	}()

	if node == nil {
		m.dispatch(ctx, notFoundEndpoint[C]())
		return
	}

	fn, ok := node.endpoints[r.Method]
	if !ok {
		fn, ok = node.endpoints[methodAny]
	}
	if !ok {
		// Set Allow header per RFC 7231 before responding with 405
		if allowed := node.allowedMethods(); len(allowed) > 0 && !ww.Written() {
			ww.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		m.dispatch(ctx, methodNotAllowedEndpoint[C]())
		return
	}

	m.dispatch(ctx, fn)
}

// dispatch runs the endpoint through the root middleware stack and renders
// the result. Routing failures (404/405) pass through middleware too so that
// every exit path gets the same decoration.
func (m *mux[C]) dispatch(ctx C, fn handler.HandlerFunc[C]) {
	if len(m.middlewares) > 0 {
		fn = chain(m.middlewares, fn)
	}

	response := fn(ctx)
	if response == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := response(ctx.ResponseWriter(), ctx.Request()); err != nil {
		m.errorHandler(ctx, err)
	}
}

func notFoundEndpoint[C handler.Context]() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			return ErrNotFound
		}
	}
}

func methodNotAllowedEndpoint[C handler.Context]() handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			return ErrMethodNotAllowed
		}
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPut, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodDelete, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodPatch, pattern, h)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodHead, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(http.MethodOptions, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(methodAny, pattern, h)
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.sealed {
		panic("router: all middlewares must be defined before routes")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates a new inline router with additional middleware.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return &mux[C]{
		inline:       true,
		parent:       m,
		tree:         m.tree,
		middlewares:  middlewares,
		errorHandler: m.errorHandler,
		newContext:   m.newContext,
		logger:       m.logger,
		prefix:       m.prefix,
	}
}

// Group creates a new inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Route creates an inline sub-router whose routes share the given prefix.
func (m *mux[C]) Route(prefix string, fn func(r Router[C])) Router[C] {
	if len(prefix) == 0 || prefix[0] != '/' {
		panic(ErrInvalidPattern)
	}
	im := m.With().(*mux[C])
	im.prefix = m.prefix + strings.TrimSuffix(prefix, "/")
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	var out []Route
	m.tree.routes(&out)
	return out
}

// handle registers a handler in the routing tree.
func (m *mux[C]) handle(method, pattern string, fn handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(ErrInvalidPattern)
	}

	// Inline routers bake their (and their ancestors') middlewares into the
	// handler at registration time; root middlewares apply at serve time.
	h := fn
	if m.inline {
		var allMiddlewares []handler.Middleware[C]
		cur := m
		for cur != nil && cur.inline {
			if len(cur.middlewares) > 0 {
				allMiddlewares = append(append([]handler.Middleware[C]{}, cur.middlewares...), allMiddlewares...)
			}
			cur = cur.parent
		}
		if len(allMiddlewares) > 0 {
			h = chain(allMiddlewares, fn)
		}
	}

	root := m
	for root.parent != nil {
		root = root.parent
	}
	root.sealed = true

	full := m.prefix + pattern
	if full != "/" {
		full = strings.TrimSuffix(full, "/")
	}
	m.tree.insert(method, full, h)
}
