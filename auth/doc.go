// Package auth implements account access: email/password registration and
// login, cookie sessions, single-use password reset links delivered by
// email, and OAuth sign-in with first-login provisioning.
//
// The package also bridges sessions into the request admission pipeline
// via NewSessionLookup, and into feature packages via UserID, so neither
// side needs to import the other.
package auth
