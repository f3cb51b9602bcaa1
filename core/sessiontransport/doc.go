// Package sessiontransport moves sessions between HTTP requests and the
// session store. The cookie transport keeps the session token in a signed
// HttpOnly cookie and degrades gracefully: a missing or invalid cookie
// yields a fresh anonymous session instead of an error.
//
//	transport := sessiontransport.NewCookie(sessionManager, cookieManager, "inkpress_session")
//
//	sess, err := transport.Load(ctx)        // always returns a usable session
//	sess, err = transport.Authenticate(ctx, userID)
//	sess, err = transport.Logout(ctx)
//
// Lookup, unlike Load, never creates a session; admission gating uses it
// to distinguish "no session" from "store down".
package sessiontransport
