// Package session provides cache-backed user sessions with token rotation.
//
// Session is generic over its Data payload, letting applications attach
// their own request-scoped state. Tokens rotate on authentication to
// prevent session fixation; session IDs stay stable for the lifetime
// of the session.
//
//	type AppData struct {
//		Theme string `json:"theme"`
//	}
//
//	store := session.NewCacheStore[AppData](cache.NewRedisStore(client))
//	manager := session.NewManager(store,
//		session.WithTTL(24*time.Hour),
//		session.WithTouchInterval(5*time.Minute),
//	)
//
// Expiration is enforced twice: the backing cache entry carries a TTL, and
// the manager re-checks ExpiresAt on every read. The touch interval limits
// how often activity extends the session, keeping write amplification low.
package session
