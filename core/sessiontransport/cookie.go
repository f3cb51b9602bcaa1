package sessiontransport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/cookie"
	"github.com/dmitrymomot/inkpress/core/handler"
	"github.com/dmitrymomot/inkpress/core/session"
	"github.com/dmitrymomot/inkpress/pkg/clientip"
)

// Cookie provides HTTP cookie-based session transport.
// It stores Session.Token as the cookie value (signed via cookie.Manager).
type Cookie[Data any] struct {
	manager   *session.Manager[Data]
	cookieMgr *cookie.Manager
	name      string
}

// NewCookie creates a new cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], cookieMgr *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{
		manager:   mgr,
		cookieMgr: cookieMgr,
		name:      name,
	}
}

// Load session from cookie. Creates a new anonymous session if the cookie is
// missing or invalid. This provides graceful degradation - always returns a
// valid session.
func (c *Cookie[Data]) Load(ctx handler.Context) (session.Session[Data], error) {
	token, err := c.cookieMgr.GetSigned(ctx.Request(), c.name)
	if err != nil {
		return c.newAnonymous(ctx)
	}

	sess, err := c.manager.GetByToken(ctx, token)
	if err != nil {
		return c.newAnonymous(ctx)
	}

	return sess, nil
}

// Lookup resolves the session from the cookie without creating one.
// Returns session.ErrNotFound when the cookie is absent or does not
// resolve to a live session; other errors indicate store failure.
// Unlike Load it never writes, so it is safe before routing decisions.
func (c *Cookie[Data]) Lookup(ctx context.Context, r *http.Request) (session.Session[Data], error) {
	token, err := c.cookieMgr.GetSigned(r, c.name)
	if err != nil {
		return session.Session[Data]{}, session.ErrNotFound
	}
	return c.manager.GetByToken(ctx, token)
}

// Save session to cookie using signed cookie.
func (c *Cookie[Data]) Save(ctx handler.Context, sess session.Session[Data]) error {
	until := time.Until(sess.ExpiresAt)
	if until <= 0 {
		return fmt.Errorf("cannot save expired session (expired %v ago)", -until)
	}

	return c.cookieMgr.SetSigned(ctx.ResponseWriter(), c.name, sess.Token,
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(int(until.Seconds())),
	)
}

// Authenticate user. Rotates the session token and sets the new token in the cookie.
// Returns the authenticated session.
func (c *Cookie[Data]) Authenticate(ctx handler.Context, userID uuid.UUID, data ...Data) (session.Session[Data], error) {
	currentSess, err := c.Load(ctx)
	if err != nil {
		return session.Session[Data]{}, err
	}

	authSess, err := c.manager.Authenticate(ctx, currentSess, userID, data...)
	if err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.Save(ctx, authSess); err != nil {
		return session.Session[Data]{}, err
	}

	return authSess, nil
}

// Logout user. Replaces the session with a fresh anonymous one.
func (c *Cookie[Data]) Logout(ctx handler.Context) (session.Session[Data], error) {
	currentSess, err := c.Load(ctx)
	if err != nil {
		return session.Session[Data]{}, err
	}

	anonSess, err := c.manager.Logout(ctx, currentSess)
	if err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.Save(ctx, anonSess); err != nil {
		return session.Session[Data]{}, err
	}

	return anonSess, nil
}

// Delete session. Deletes cookie and session from store.
func (c *Cookie[Data]) Delete(ctx handler.Context) error {
	currentSess, err := c.Load(ctx)
	if err != nil {
		return err
	}

	if err := c.manager.Delete(ctx, currentSess.ID); err != nil {
		return err
	}

	c.cookieMgr.Delete(ctx.ResponseWriter(), c.name)
	return nil
}

// Touch extends session expiration when the touch interval has elapsed,
// keeping the cookie MaxAge synchronized with server-side expiration.
func (c *Cookie[Data]) Touch(ctx handler.Context, sess session.Session[Data]) error {
	refreshed, err := c.manager.Touch(ctx, sess)
	if err != nil {
		return err
	}
	if refreshed.UpdatedAt.After(sess.UpdatedAt) {
		return c.Save(ctx, refreshed)
	}
	return nil
}

func (c *Cookie[Data]) newAnonymous(ctx handler.Context) (session.Session[Data], error) {
	sess, err := c.manager.New(ctx, session.NewSessionParams{
		IP:        clientip.GetIP(ctx.Request()),
		UserAgent: ctx.Request().Header.Get("User-Agent"),
	})
	if err != nil {
		return session.Session[Data]{}, err
	}
	if err := c.Save(ctx, sess); err != nil {
		return session.Session[Data]{}, err
	}
	return sess, nil
}
