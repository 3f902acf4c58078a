package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avrorin/identity-server/internal/mocks"
	"github.com/avrorin/identity-server/internal/model"
	"github.com/avrorin/identity-server/internal/repository/memory"
	"github.com/avrorin/identity-server/internal/security"
	"github.com/avrorin/identity-server/internal/testutil"
	"github.com/avrorin/identity-server/internal/token"
)

func makeAuth(t *testing.T, users model.UserStore) *Auth {
	t.Helper()

	tokens := NewTokenService(token.NewJWT("auth-test-secret"), memory.NewSessionRepository(), time.Hour, testutil.MakeNoopLogger())
	return NewAuth(users, tokens, security.NewPasswordHasher(bcrypt.MinCost), testutil.MakeNoopLogger())
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)

	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.Name == "A" && u.Email == "a@x.com" && u.PasswordHash != "password1"
	})).Return(model.User{ID: uuid.New(), Name: "A", Email: "a@x.com"}, nil).Once()

	svc := makeAuth(t, users)

	user, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "A", user.Name)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)

	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: uuid.New(), Email: "a@x.com"}, nil).Once()

	svc := makeAuth(t, users)

	_, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuth_Register_EmailTakenRace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)

	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{}, model.ErrNotFound).Once()
	users.On("Create", ctx, mock.Anything).Return(model.User{}, model.ErrEmailTaken).Once()

	svc := makeAuth(t, users)

	_, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuth_LoginAndProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	userID := uuid.New()
	stored := model.User{ID: userID, Name: "A", Email: "a@x.com", PasswordHash: hash}

	users.On("GetByEmail", ctx, "a@x.com").Return(stored, nil).Once()
	users.On("GetByID", ctx, userID).Return(stored, nil).Once()

	svc := makeAuth(t, users)

	user, issued, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	require.NotEmpty(t, issued.Value)

	profile, err := svc.Profile(ctx, issued.Value)
	require.NoError(t, err)
	assert.Equal(t, "A", profile.Name)
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: uuid.New(), Email: "a@x.com", PasswordHash: hash}, nil).Once()

	svc := makeAuth(t, users)

	_, _, err = svc.Login(ctx, "a@x.com", "password2")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuth_Login_UnknownEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)

	users.On("GetByEmail", ctx, "nobody@x.com").Return(model.User{}, model.ErrNotFound).Once()

	svc := makeAuth(t, users)

	_, _, err := svc.Login(ctx, "nobody@x.com", "password1")
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuth_Profile_InvalidToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)

	svc := makeAuth(t, users)

	_, err := svc.Profile(ctx, "not-a-token")
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuth_Profile_DeletedUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	userID := uuid.New()
	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: userID, PasswordHash: hash}, nil).Once()
	users.On("GetByID", ctx, userID).Return(model.User{}, model.ErrNotFound).Once()

	svc := makeAuth(t, users)

	_, issued, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	_, err = svc.Profile(ctx, issued.Value)
	require.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestAuth_RefreshInvalidatesOldToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	userID := uuid.New()
	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: userID, PasswordHash: hash}, nil).Once()

	svc := makeAuth(t, users)

	_, issued, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, issued.Value)
	require.NoError(t, err)
	assert.NotEqual(t, issued.Value, rotated.Value)

	_, err = svc.Refresh(ctx, issued.Value)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	userID := uuid.New()
	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: userID, PasswordHash: hash}, nil).Once()

	svc := makeAuth(t, users)

	_, issued, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, issued.Value))

	_, err = svc.Profile(ctx, issued.Value)
	require.ErrorIs(t, err, model.ErrTokenRevoked)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, issued.Value))

	require.ErrorIs(t, svc.Logout(ctx, "garbage"), model.ErrInvalidToken)
}

func TestAuth_LogoutAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := mocks.NewUserStore(t)
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("password1")
	require.NoError(t, err)

	userID := uuid.New()
	users.On("GetByEmail", ctx, "a@x.com").Return(model.User{ID: userID, PasswordHash: hash}, nil).Twice()

	svc := makeAuth(t, users)

	_, first, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, first.Value))

	_, err = svc.Refresh(ctx, first.Value)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
	_, err = svc.Refresh(ctx, second.Value)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
}
