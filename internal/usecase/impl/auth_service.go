// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "gate/internal/delivery/context"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/repository"
	"gate/internal/domain/service"
	"gate/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface. It holds no per-request
// state; concurrent requests, including ones for the same email, are safe to
// run in parallel.
type authService struct {
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	issuer   service.TokenIssuer
	logger   *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Issuer   service.TokenIssuer
	Logger   *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		issuer:   params.Issuer,
		logger:   params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the registration protocol: existence pre-check,
// password hashing, insert, token issuance. Every failure is terminal for the
// request and classified exactly once; nothing is retried.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	// 1. Pre-check for an existing user. This is a latency optimization only;
	// the store's unique constraint in step 3 is the authoritative guard.
	_, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		srv.log(ctx).Warn("Registration rejected, email taken", slog.String("email", input.Email))

		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("registration failed")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Failed to check existing user", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to check existing user")
	}

	// 2. Hash the password.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	// 3. Insert. A duplicate inserted concurrently between step 1 and now
	// surfaces as the store's duplicate-email error, which passes through
	// unchanged.
	newUser := buildNewUser(input.Name, input.Email, hashedPassword)
	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	// 4. Issue the session token.
	token, err := srv.issuer.Issue(newUser)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token during registration", slog.Any("userID", newUser.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenGeneration.WrapMessage("failed to issue token during registration")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.AuthOutput{Token: token, User: newUser}, nil
}

// Login orchestrates the login protocol: lookup, password verification, token
// issuance. An unknown email and a wrong password both classify as invalid
// credentials so the caller cannot tell whether the email is registered.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	// 1. Find the user.
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
		}
		srv.log(ctx).Error("Failed to load user for login", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// 2. Check the password. A mismatch classifies identically to an unknown
	// email; only a malformed stored hash is an internal fault.
	ok, err := srv.hasher.Check(input.Password, user.PasswordHash)
	if err != nil {
		srv.log(ctx).Error("Password verification fault", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("password verification fault")
	}
	if !ok {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// 3. Issue the session token.
	token, err := srv.issuer.Issue(user)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token during login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenGeneration.WrapMessage("failed to issue token during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{Token: token, User: user}, nil
}

func buildNewUser(name, email, passwordHash string) *entity.User {
	return &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
}
