package admission

import (
	"context"
	"net/http"
)

type sessionState int

const (
	sessionNotFound sessionState = iota
	sessionFound
	sessionLookupFailed
)

// SessionResult is the outcome of a session lookup. It distinguishes
// "no session" from "lookup failed" so that treating them identically in
// the gating policy is an explicit, auditable decision rather than an
// implicit catch-and-swallow.
type SessionResult struct {
	state sessionState
	err   error
}

// SessionFound marks the request as carrying a valid session.
func SessionFound() SessionResult {
	return SessionResult{state: sessionFound}
}

// SessionNotFound marks the request as carrying no session.
func SessionNotFound() SessionResult {
	return SessionResult{state: sessionNotFound}
}

// SessionLookupFailed marks the lookup itself as having failed.
// The pipeline gates it exactly like SessionNotFound; the error is kept
// for logging only.
func SessionLookupFailed(err error) SessionResult {
	return SessionResult{state: sessionLookupFailed, err: err}
}

// Authenticated reports whether a valid session was found.
// NotFound and LookupFailed both answer false.
func (r SessionResult) Authenticated() bool {
	return r.state == sessionFound
}

// Failed reports whether the lookup itself failed.
func (r SessionResult) Failed() bool {
	return r.state == sessionLookupFailed
}

// Err returns the lookup failure cause, nil otherwise.
func (r SessionResult) Err() error {
	return r.err
}

// SessionLookup asks the auth service whether the request carries a valid
// session. Implementations must never panic; failures are reported through
// SessionLookupFailed.
type SessionLookup interface {
	Lookup(ctx context.Context, r *http.Request) SessionResult
}

// SessionLookupFunc adapts a function to the SessionLookup interface.
type SessionLookupFunc func(ctx context.Context, r *http.Request) SessionResult

// Lookup implements SessionLookup.
func (f SessionLookupFunc) Lookup(ctx context.Context, r *http.Request) SessionResult {
	return f(ctx, r)
}
