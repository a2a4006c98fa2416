package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"
	"gate/internal/domain/repository"
	"gate/internal/usecase"
)

// memUserRepo is an in-memory UserRepository with the same uniqueness
// guarantee as the real store: Create is atomic and rejects a duplicate email
// even when the pre-check raced past it.
type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*entity.User

	findErr   error
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*entity.User)}
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}

	user, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *user

	return &copied, nil
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}

	if _, exists := r.byEmail[user.Email]; exists {
		return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
	}

	user.ID = uuid.New()
	stored := *user
	r.byEmail[user.Email] = &stored

	return nil
}

type stubHasher struct {
	hashErr  error
	checkErr error
}

func (h *stubHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *stubHasher) Check(password, hash string) (bool, error) {
	if h.checkErr != nil {
		return false, h.checkErr
	}

	return "hashed:"+password == hash, nil
}

type stubIssuer struct {
	err error
}

func (i *stubIssuer) Issue(user *entity.User) (string, error) {
	if i.err != nil {
		return "", i.err
	}

	return "token-for-" + user.Email, nil
}

func newTestService(repo *memUserRepo, hasher *stubHasher, issuer *stubIssuer) usecase.AuthUsecase {
	return NewAuthService(AuthServiceParams{
		UserRepo: repo,
		Hasher:   hasher,
		Issuer:   issuer,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	out, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "token-for-ada@example.com", out.Token)
	assert.Equal(t, "Ada", out.User.Name)
	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.NotEqual(t, uuid.Nil, out.User.ID)

	// The plaintext must never survive registration.
	stored, err := repo.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:hunter2", stored.PasswordHash)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	input := &usecase.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "hunter2"}
	_, err := srv.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = srv.Register(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.HTTPCode())
}

func TestAuthService_RegisterHashingFault(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{hashErr: errors.New("rng exhausted")}, &stubIssuer{})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))

	// A failed registration must not leave a partial user behind.
	_, err = repo.FindByEmail(context.Background(), "ada@example.com")
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestAuthService_RegisterTokenFault(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{err: errors.New("signing failed")})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenGeneration))
}

func TestAuthService_RegisterStorageFault(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	repo.findErr = domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "find user")
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 500, appErr.HTTPCode())
	assert.Equal(t, "internal server error", appErr.Message())
}

func TestAuthService_RegisterConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	const racers = 8

	var wg sync.WaitGroup
	results := make([]error, racers)

	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = srv.Register(context.Background(), &usecase.RegisterInput{
				Name:     "Ada",
				Email:    "ada@example.com",
				Password: "hunter2",
			})
		}()
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domainerrors.ErrUserAlreadyExists):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, racers-1, duplicates)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	out, err := srv.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "token-for-ada@example.com", out.Token)
	assert.Equal(t, "Ada", out.User.Name)
}

func TestAuthService_LoginInvalidCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	// Unknown email and wrong password must classify identically so a caller
	// cannot probe which emails are registered.
	_, unknownErr := srv.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "hunter2",
	})
	_, wrongErr := srv.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "wrong",
	})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.True(t, errors.Is(unknownErr, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongErr, domainerrors.ErrInvalidCredentials))

	var unknownApp, wrongApp domainerrors.AppError
	require.True(t, errors.As(unknownErr, &unknownApp))
	require.True(t, errors.As(wrongErr, &wrongApp))
	assert.Equal(t, unknownApp.HTTPCode(), wrongApp.HTTPCode())
	assert.Equal(t, unknownApp.Message(), wrongApp.Message())
}

func TestAuthService_LoginVerificationFault(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	srv := newTestService(repo, &stubHasher{}, &stubIssuer{})

	_, err := srv.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	faulty := newTestService(repo, &stubHasher{checkErr: errors.New("corrupt hash")}, &stubIssuer{})
	_, err = faulty.Login(context.Background(), &usecase.LoginInput{
		Email:    "ada@example.com",
		Password: "hunter2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}
