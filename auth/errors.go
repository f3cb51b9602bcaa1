package auth

import "errors"

var (
	// ErrUnauthenticated is returned when a request has no authenticated session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned for any login failure. It deliberately
	// does not distinguish unknown emails from wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidResetToken is returned when a password reset token is unknown,
	// already used, or expired.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrStateMismatch is returned when an OAuth callback carries an unknown state.
	ErrStateMismatch = errors.New("oauth state mismatch")
)
