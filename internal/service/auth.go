package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avrorin/identity-server/internal/logger"
	"github.com/avrorin/identity-server/internal/model"
	"github.com/avrorin/identity-server/internal/security"
)

// Auth orchestrates registration, login, profile retrieval, token refresh
// and logout on top of the user store and the token service.
type Auth struct {
	users  model.UserStore
	tokens *TokenService
	hasher *security.PasswordHasher
	logger *logger.Logger
}

func NewAuth(users model.UserStore, tokens *TokenService, hasher *security.PasswordHasher, logger *logger.Logger) *Auth {
	return &Auth{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a new user. It does not issue a token; the client logs
// in afterwards with the same credentials.
func (a *Auth) Register(ctx context.Context, name, email, password string) (model.User, error) {
	a.logger.Debug("Auth service: starting user registration", "email", email)

	_, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: email already taken", "email", email)
		return model.User{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store re-checks uniqueness on insert, so a concurrent
	// registration with the same email still fails with ErrEmailTaken.
	savedUser, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, model.ErrEmailTaken
		}
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"email", email,
		"user_id", savedUser.ID)

	return savedUser, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password collapse into the same error, and the unknown-email path still
// performs one hash comparison so the two are not distinguishable by timing.
func (a *Auth) Login(ctx context.Context, email, password string) (model.User, model.Token, error) {
	a.logger.Debug("Auth service: starting user login", "email", email)

	user, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.hasher.VerifyDummy(password)
		return model.User{}, model.Token{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, model.Token{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: password mismatch", "email", email)
		return model.User{}, model.Token{}, model.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(ctx, user.ID)
	if err != nil {
		return model.User{}, model.Token{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: user logged in",
		"email", email,
		"user_id", user.ID)

	return user, token, nil
}

// Profile returns the user a valid token belongs to.
func (a *Auth) Profile(ctx context.Context, tokenString string) (model.User, error) {
	userID, err := a.tokens.Validate(ctx, tokenString)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		// Token subject no longer exists; treat as an auth failure.
		return model.User{}, model.ErrUnauthenticated
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by id",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Refresh exchanges a valid token for a fresh one, invalidating the old.
func (a *Auth) Refresh(ctx context.Context, tokenString string) (model.Token, error) {
	return a.tokens.Refresh(ctx, tokenString)
}

// Logout revokes the presented token. It succeeds for any structurally
// valid token regardless of prior revocation state.
func (a *Auth) Logout(ctx context.Context, tokenString string) error {
	return a.tokens.Revoke(ctx, tokenString)
}

// LogoutAll revokes every active token of the presenting user. The token
// must itself still be valid to prove who is asking.
func (a *Auth) LogoutAll(ctx context.Context, tokenString string) error {
	userID, err := a.tokens.Validate(ctx, tokenString)
	if err != nil {
		return err
	}
	return a.tokens.RevokeAll(ctx, userID)
}
