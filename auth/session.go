package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/admission"
	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/session"
	"github.com/dmitrymomot/inkpress/core/sessiontransport"
)

// SessionData is the profile snapshot cached in authenticated sessions so
// templates and handlers can greet the user without a database round trip.
type SessionData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSessionLookup adapts a cookie session transport to the admission
// pipeline. A missing or expired session is a normal unauthenticated
// request; only store failures surface as lookup errors.
func NewSessionLookup[Data any](transport *sessiontransport.Cookie[Data]) admission.SessionLookup {
	if transport == nil {
		panic("auth: session transport is required")
	}
	return admission.SessionLookupFunc(func(ctx context.Context, r *http.Request) admission.SessionResult {
		sess, err := transport.Lookup(ctx, r)
		switch {
		case err == nil && sess.IsAuthenticated():
			return admission.SessionFound()
		case err == nil:
			return admission.SessionNotFound()
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
			return admission.SessionNotFound()
		default:
			return admission.SessionLookupFailed(err)
		}
	})
}

// UserID returns an identity func for feature packages: it resolves the
// authenticated user's id from the request session, or ErrUnauthenticated
// for anonymous requests.
func UserID[C handler.Context](transport *sessiontransport.Cookie[SessionData]) func(ctx C) (uuid.UUID, error) {
	if transport == nil {
		panic("auth: session transport is required")
	}
	return func(ctx C) (uuid.UUID, error) {
		sess, err := transport.Lookup(ctx, ctx.Request())
		if err != nil {
			return uuid.Nil, ErrUnauthenticated
		}
		if !sess.IsAuthenticated() {
			return uuid.Nil, ErrUnauthenticated
		}
		return sess.UserID, nil
	}
}
