package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gate/internal/domain/entity"
)

// SessionTTL is the fixed lifetime of an issued session token.
const SessionTTL = 48 * time.Hour

// SessionClaims is the signed payload of a session token: subject (the user
// id), issued-at, expiry, and the user's email. The shape is kept stable so a
// future verifier can validate signature, expiry, and subject without
// redesign.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer builds and signs an expiring claim set bound to a user identity.
type TokenIssuer interface {
	// Issue creates a signed session token for the given user with
	// issued_at = now and expires_at = now + SessionTTL.
	Issue(user *entity.User) (string, error)
}
