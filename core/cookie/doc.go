// Package cookie provides secure HTTP cookie management with HMAC signing
// and key rotation support.
//
// The Manager applies secure defaults (Path=/, HttpOnly, SameSite=Lax) and
// enforces the 4KB cookie size limit. Signed cookies use HMAC-SHA256 with
// the first configured secret; older secrets remain valid for verification,
// allowing zero-downtime rotation.
//
//	manager, err := cookie.New([]string{secret})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Tamper-evident cookie, e.g. a session token reference
//	err = manager.SetSigned(w, "session_token", token, cookie.WithMaxAge(86400))
//
//	token, err := manager.GetSigned(r, "session_token")
//	if errors.Is(err, cookie.ErrInvalidSignature) {
//		// tampered or signed with an unknown key
//	}
//
// NewFromConfig builds a Manager from environment-driven Config, with
// comma-separated COOKIE_SECRETS for rotation.
package cookie
