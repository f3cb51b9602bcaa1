package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkpress/core/cache"
)

const (
	idKeyPrefix    = "session:id:"
	tokenKeyPrefix = "session:token:"
)

// CacheStore persists sessions in a cache.Store with TTL-based expiration.
// Each session is stored once under its ID; a token index maps the current
// token to that ID so rotation invalidates old tokens without rewriting
// the payload twice.
type CacheStore[Data any] struct {
	store cache.Store
}

// NewCacheStore creates a session store backed by the given cache.
func NewCacheStore[Data any](store cache.Store) *CacheStore[Data] {
	if store == nil {
		panic("session: cache store must not be nil")
	}
	return &CacheStore[Data]{store: store}
}

func (s *CacheStore[Data]) GetByID(ctx context.Context, id uuid.UUID) (*Session[Data], error) {
	var sess Session[Data]
	if err := cache.GetJSON(ctx, s.store, idKeyPrefix+id.String(), &sess); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *CacheStore[Data]) GetByToken(ctx context.Context, token string) (*Session[Data], error) {
	data, err := s.store.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	id, err := uuid.Parse(string(data))
	if err != nil {
		return nil, ErrNotFound
	}

	sess, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Guard against a stale index entry pointing at a rotated session.
	if sess.Token != token {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *CacheStore[Data]) Save(ctx context.Context, sess *Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	// Drop the old token index when the token rotated.
	if prev, err := s.GetByID(ctx, sess.ID); err == nil && prev.Token != sess.Token {
		if err := s.store.Delete(ctx, tokenKeyPrefix+prev.Token); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}

	if err := cache.SetJSON(ctx, s.store, idKeyPrefix+sess.ID.String(), sess, ttl); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	if err := s.store.Set(ctx, tokenKeyPrefix+sess.Token, []byte(sess.ID.String()), ttl); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

func (s *CacheStore[Data]) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Join(ErrDeleteSession, err)
	}

	if err := s.store.Delete(ctx, tokenKeyPrefix+sess.Token); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}
	if err := s.store.Delete(ctx, idKeyPrefix+id.String()); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}
	return nil
}
