// Package router provides a generic HTTP router with typed context support.
//
// The router is parameterized by a context type implementing handler.Context,
// which allows applications to thread their own request-scoped values through
// handlers and middleware without type assertions at call sites.
//
// # Basic Usage
//
//	r := router.New[*router.Context]()
//	r.Get("/posts/{slug}", func(ctx *router.Context) handler.Response {
//		slug := ctx.Param("slug")
//		return response.JSON(map[string]string{"slug": slug})
//	})
//	http.ListenAndServe(":8080", r)
//
// # Custom Context
//
// Applications typically define their own context type and supply a factory:
//
//	r := router.New(
//		router.WithContextFactory(newAppContext),
//		router.WithErrorHandler(appErrorHandler),
//	)
//
// # Patterns
//
// Route patterns support static segments, named parameters, and a trailing
// wildcard:
//
//	/posts              static
//	/posts/{slug}       named parameter, available via ctx.Param("slug")
//	/static/*           wildcard, captures the remainder as ctx.Param("*")
//
// Registering the same method and pattern twice panics, as does a pattern
// with a non-trailing wildcard. Misconfigured routes are programmer errors
// and should fail at startup, not at request time.
//
// # Middleware
//
// Middleware registered with Use applies to every route, including the
// built-in 404 and 405 responses. With and Group create inline routers
// whose middleware applies only to routes registered through them.
package router
