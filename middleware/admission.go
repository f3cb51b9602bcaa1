package middleware

import (
	"github.com/dmitrymomot/inkpress/core/admission"
	"github.com/dmitrymomot/inkpress/core/handler"
)

// Admission wires the admission pipeline into the router as the outermost
// middleware. Terminal verdicts (preflight answers, CSRF rejections, locale
// and auth redirects) short-circuit the chain; pass-through requests reach
// the route handler with the pipeline's response decoration applied, so
// every exit carries the same CSRF-cookie and CORS treatment.
//
// Register it before any other middleware:
//
//	r.Use(middleware.Admission[*MyContext](pipeline))
//	r.Use(middleware.Logging[*MyContext]())
func Admission[C handler.Context](p *admission.Pipeline) handler.Middleware[C] {
	if p == nil {
		panic("admission middleware: pipeline is required")
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			decision := p.Admit(ctx, ctx.Request())
			if decision.Terminal != nil {
				return decision.Terminal
			}
			return decision.Decorate(next(ctx))
		}
	}
}
