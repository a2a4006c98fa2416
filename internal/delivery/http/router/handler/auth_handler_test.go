package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gate/internal/delivery/http/middleware"
	"gate/internal/delivery/http/validator"
	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/usecase"
)

// stubUsecase lets each test script the outcome of Register/Login.
type stubUsecase struct {
	register func(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error)
	login    func(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error)
}

func (s *stubUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	return s.register(ctx, input)
}

func (s *stubUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	return s.login(ctx, input)
}

func testUser() *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// perform runs a handler through an echo instance configured like the real
// server: struct-tag validation plus the classifying error handler.
func perform(t *testing.T, uc usecase.AuthUsecase, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorMiddleware := middleware.NewErrorMiddleware(logger)

	h := NewAuthHandler(uc, logger)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var err error
	switch path {
	case "/signup":
		err = h.Signup(c)
	case "/login":
		err = h.Login(c)
	default:
		t.Fatalf("unknown path %s", path)
	}

	if err != nil {
		errorMiddleware.HandleHTTPError(err, c)
	}

	return rec
}

func TestSignup_Success(t *testing.T) {
	t.Parallel()

	user := testUser()
	uc := &stubUsecase{
		register: func(_ context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
			assert.Equal(t, "Ada", input.Name)
			assert.Equal(t, "ada@example.com", input.Email)

			return &usecase.AuthOutput{Token: "signed-token", User: user}, nil
		},
	}

	rec := perform(t, uc, "/signup", `{"name":"Ada","email":"ada@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			CreatedAt string `json:"created_at"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "signed-token", body.Token)
	assert.Equal(t, user.ID.String(), body.User.ID)
	assert.Equal(t, "Ada", body.User.Name)
	assert.Equal(t, "ada@example.com", body.User.Email)
	assert.NotEmpty(t, body.User.CreatedAt)

	// The hash must never appear anywhere in the response.
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	uc := &stubUsecase{
		register: func(_ context.Context, _ *usecase.RegisterInput) (*usecase.AuthOutput, error) {
			return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("registration failed")
		},
	}

	rec := perform(t, uc, "/signup", `{"name":"Ada","email":"ada@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"user already exists"}`, rec.Body.String())
}

func TestSignup_ValidationFailure(t *testing.T) {
	t.Parallel()

	uc := &stubUsecase{
		register: func(_ context.Context, _ *usecase.RegisterInput) (*usecase.AuthOutput, error) {
			t.Fatal("usecase must not be reached on invalid payload")

			return nil, nil
		},
	}

	rec := perform(t, uc, "/signup", `{"name":"Ada","email":"not-an-email","password":"hunter2"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request payload"}`, rec.Body.String())
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	user := testUser()
	uc := &stubUsecase{
		login: func(_ context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
			assert.Equal(t, "ada@example.com", input.Email)

			return &usecase.AuthOutput{Token: "signed-token", User: user}, nil
		},
	}

	rec := perform(t, uc, "/login", `{"email":"ada@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"signed-token"`)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestLogin_InvalidCredentialsIdenticalResponses(t *testing.T) {
	t.Parallel()

	invalid := func(_ context.Context, _ *usecase.LoginInput) (*usecase.AuthOutput, error) {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	// Whether the email is unknown or the password wrong, the wire response
	// must be byte-identical.
	unknownEmail := perform(t, &stubUsecase{login: invalid}, "/login", `{"email":"nobody@example.com","password":"hunter2"}`)
	wrongPassword := perform(t, &stubUsecase{login: invalid}, "/login", `{"email":"ada@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, unknownEmail.Body.String(), wrongPassword.Body.String())
	assert.JSONEq(t, `{"error":"invalid credentials"}`, unknownEmail.Body.String())
}

func TestLogin_StorageFailure(t *testing.T) {
	t.Parallel()

	uc := &stubUsecase{
		login: func(_ context.Context, _ *usecase.LoginInput) (*usecase.AuthOutput, error) {
			return nil, domainerrors.NewDatabaseExecuteError(assert.AnError, "find user")
		},
	}

	rec := perform(t, uc, "/login", `{"email":"ada@example.com","password":"hunter2"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
