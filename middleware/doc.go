// Package middleware provides HTTP middleware built on the generic
// handler.Middleware chain: request admission, rate limiting, request IDs,
// client IP extraction, and structured request logging.
//
// Middleware composes through the router:
//
//	r := router.New[*router.Context](
//		router.WithMiddleware(
//			middleware.Admission[*router.Context](pipeline),
//			middleware.RequestID[*router.Context](),
//			middleware.ClientIP[*router.Context](),
//			middleware.Logging[*router.Context](),
//		),
//	)
//
// Order matters: Admission runs first so terminal verdicts skip the rest of
// the chain, and ClientIP must precede RateLimit for the default IP-based
// rate limiting key.
package middleware
