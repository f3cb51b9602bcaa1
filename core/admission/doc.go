// Package admission implements the request-admission pipeline: the
// composition of locale resolution, CSRF validation, CORS policy, session
// lookup, and path classification that every inbound request passes before
// reaching a route handler.
//
// The pipeline owns no persistent state. It reads the request, consults the
// session service through the narrow SessionLookup interface, and produces
// one of three outcomes: a terminal response (preflight answer, CSRF
// rejection, redirect), a pass-through, or a diagnostic failure response.
// Every exit is decorated with a CSRF-cookie-ensure and CORS headers,
// except the CSRF rejection, which deliberately skips CORS.
//
// Branching:
//
//   - API-prefixed paths skip locale resolution and authentication gating:
//     preflight → CSRF → pass through.
//   - Page paths additionally resolve the locale (possibly yielding a
//     redirect), look up the session, classify the stripped path, and apply
//     the gating policy: authenticated visitors leave auth-only pages for
//     home, unauthenticated visitors leave protected pages for login with
//     the original path preserved as callbackUrl.
//
// Session lookup failure is gated identically to "no session": a degraded
// auth service must never block access to genuinely public pages.
//
// Wiring:
//
//	pipeline := admission.NewPipeline(cfg, sessionLookup)
//	decision := pipeline.Admit(ctx, r)
//	if decision.Terminal != nil {
//		return decision.Terminal
//	}
//	return decision.Decorate(next(ctx))
package admission
