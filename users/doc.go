// Package users provides user accounts: the User model, a PostgreSQL-backed
// repository, and the current-user profile endpoints. The repository
// participates in caller-managed transactions via pg.WithTx.
package users
