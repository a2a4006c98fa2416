// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gate/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user. The
// plaintext password is transient: it is never persisted and never logged.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// AuthOutput is the single success shape for both registration and login:
// a signed session token plus the user whose sanitized view is returned to
// the client.
type AuthOutput struct {
	Token string
	User  *entity.User
}

// AuthUsecase defines the interface for credential-issuance operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
}
