// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record at the heart of the system. The ID is assigned
// by the store on insert and never changes afterwards; Email is the unique
// login key, stored and compared exactly as received.
type User struct {
	ID           uuid.UUID  // Store-assigned unique identifier, immutable.
	Name         string     // The user's display name.
	Email        string     // Unique login identifier.
	PasswordHash string     // bcrypt hash of the password. Never the plaintext, never serialized outward.
	CreatedAt    time.Time  // Set once by the store on insert, immutable.
	UpdatedAt    *time.Time // Set by profile-altering operations; nil until the first update.
}

// PublicUser is the sanitized projection of a User that is safe to return to
// a client. The password hash is deliberately absent.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the sanitized view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
