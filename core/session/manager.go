package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager handles session lifecycle including creation, retrieval, and expiration.
// The touch interval determines how often sessions are automatically extended on
// access, reducing write operations to the store.
type Manager[Data any] struct {
	store         Store[Data]
	ttl           time.Duration
	touchInterval time.Duration
}

// NewManager creates a session manager with the specified store and options.
func NewManager[Data any](store Store[Data], opts ...Option) *Manager[Data] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Manager[Data]{
		store:         store,
		ttl:           cfg.TTL,
		touchInterval: cfg.TouchInterval,
	}
}

// New creates and persists a fresh anonymous session.
func (m *Manager[Data]) New(ctx context.Context, params NewSessionParams) (Session[Data], error) {
	sess, err := New[Data](params, m.ttl)
	if err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, err
	}
	return sess, nil
}

// GetByID retrieves a session by ID and validates expiration.
func (m *Manager[Data]) GetByID(ctx context.Context, id uuid.UUID) (Session[Data], error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}
	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}
	return *sess, nil
}

// GetByToken retrieves a session by token and validates expiration.
func (m *Manager[Data]) GetByToken(ctx context.Context, token string) (Session[Data], error) {
	sess, err := m.store.GetByToken(ctx, token)
	if err != nil {
		return Session[Data]{}, err
	}
	if sess.IsExpired() {
		return Session[Data]{}, ErrExpired
	}
	return *sess, nil
}

// Authenticate binds the session to userID, rotating the token, and persists it.
func (m *Manager[Data]) Authenticate(ctx context.Context, sess Session[Data], userID uuid.UUID, data ...Data) (Session[Data], error) {
	if err := sess.Authenticate(userID, data...); err != nil {
		return Session[Data]{}, err
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, err
	}
	return sess, nil
}

// Logout deletes the current session and returns a fresh anonymous one
// preserving the client network identity.
func (m *Manager[Data]) Logout(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	if err := m.store.Delete(ctx, sess.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return Session[Data]{}, errors.Join(ErrDeleteSession, err)
	}
	return m.New(ctx, NewSessionParams{IP: sess.IP, UserAgent: sess.UserAgent})
}

// Delete removes a session from the store.
func (m *Manager[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}

// Touch extends session expiration if the touch interval has elapsed,
// persisting only when something changed.
func (m *Manager[Data]) Touch(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	before := sess.UpdatedAt
	sess.Touch(m.ttl, m.touchInterval)
	if sess.UpdatedAt.After(before) {
		if err := m.store.Save(ctx, &sess); err != nil {
			return Session[Data]{}, err
		}
	}
	return sess, nil
}

// SaveData persists updated session data.
func (m *Manager[Data]) SaveData(ctx context.Context, sess Session[Data], data Data) (Session[Data], error) {
	sess.SetData(data)
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, err
	}
	return sess, nil
}

// TTL returns the session time-to-live duration.
func (m *Manager[Data]) TTL() time.Duration {
	return m.ttl
}
