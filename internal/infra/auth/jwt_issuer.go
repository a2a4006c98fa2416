// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"gate/config"
	"gate/internal/domain/entity"
	"gate/internal/domain/service"
)

// jwtIssuer is a concrete implementation of the TokenIssuer interface using
// HS256-signed JWTs in the compact three-part encoding.
type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTIssuer is the constructor for jwtIssuer. The signing secret is loaded
// once at process start; an absent secret is a startup error, never a
// per-request fallback to a default key.
func NewJWTIssuer(cfg *config.Config) (service.TokenIssuer, error) {
	if cfg.SecretKey.Token == "" {
		return nil, errors.New("token signing secret must be provided")
	}

	return &jwtIssuer{
		secret: []byte(cfg.SecretKey.Token),
		ttl:    service.SessionTTL,
	}, nil
}

// Issue builds SessionClaims for the user and signs them with HS256.
func (s *jwtIssuer) Issue(user *entity.User) (string, error) {
	now := time.Now()

	claims := service.SessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}
