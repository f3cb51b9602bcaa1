package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. PasswordHash is a bcrypt hash and never leaves
// the server; JSON serialization excludes it.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
