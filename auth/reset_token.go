package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/cache"
)

const resetTokenKeyPrefix = "auth:pwreset:"

// resetTokenStore issues single-use password reset tokens backed by the
// shared cache. Tokens expire with the TTL and are deleted on first use.
type resetTokenStore struct {
	store cache.Store
	ttl   time.Duration
}

func newResetTokenStore(store cache.Store, ttl time.Duration) *resetTokenStore {
	return &resetTokenStore{store: store, ttl: ttl}
}

func (s *resetTokenStore) issue(ctx context.Context, userID uuid.UUID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	if err := s.store.Set(ctx, resetTokenKeyPrefix+token, []byte(userID.String()), s.ttl); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// consume resolves and invalidates a token. Returns ErrInvalidResetToken
// when the token is unknown or expired.
func (s *resetTokenStore) consume(ctx context.Context, token string) (uuid.UUID, error) {
	key := resetTokenKeyPrefix + token

	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return uuid.Nil, ErrInvalidResetToken
		}
		return uuid.Nil, fmt.Errorf("load reset token: %w", err)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return uuid.Nil, fmt.Errorf("invalidate reset token: %w", err)
	}

	userID, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidResetToken
	}
	return userID, nil
}
