package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avrorin/identity-server/internal/logger"
	"github.com/avrorin/identity-server/internal/model"
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = time.Hour

// TokenService issues, validates, refreshes and revokes bearer tokens.
// It composes the token codec with the session registry: the codec proves
// a token was ours and is unexpired, the registry proves it has not been
// revoked since issuance.
type TokenService struct {
	codec    model.TokenCodec
	sessions model.SessionStore
	ttl      time.Duration
	logger   *logger.Logger
}

func NewTokenService(codec model.TokenCodec, sessions model.SessionStore, ttl time.Duration, logger *logger.Logger) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{codec: codec, sessions: sessions, ttl: ttl, logger: logger}
}

// Issue creates a token for the user with a fresh random token ID and
// registers a session record for it.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (model.Token, error) {
	now := time.Now()
	tokenID := uuid.NewString()
	expiresAt := now.Add(s.ttl)

	value, err := s.codec.Encode(userID, tokenID, now, expiresAt)
	if err != nil {
		return model.Token{}, fmt.Errorf("failed to encode token: %w", err)
	}

	session := model.Session{
		ID:        uuid.New(),
		TokenID:   tokenID,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return model.Token{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Debug("Token service: token issued",
		"user_id", userID,
		"token_id", tokenID)

	return model.Token{
		Value:     value,
		TokenID:   tokenID,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Refresh rotates a token: the presented token is revoked and a new one is
// issued for the same subject. Refresh is deliberately not idempotent; a
// second refresh with the same token fails with ErrTokenRevoked, which
// stops replay of a token that has already been exchanged.
func (s *TokenService) Refresh(ctx context.Context, tokenString string) (model.Token, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return model.Token{}, err
	}

	valid, err := s.sessions.IsValid(ctx, claims.TokenID)
	if err != nil {
		return model.Token{}, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return model.Token{}, model.ErrTokenRevoked
	}

	if err := s.sessions.Revoke(ctx, claims.TokenID); err != nil {
		return model.Token{}, fmt.Errorf("failed to revoke old session: %w", err)
	}

	s.logger.Debug("Token service: token rotated",
		"user_id", claims.UserID,
		"old_token_id", claims.TokenID)

	return s.Issue(ctx, claims.UserID)
}

// Validate checks a token end to end and returns its subject. A token is
// accepted only if the signature verifies, it is unexpired, and its session
// has not been revoked.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (uuid.UUID, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	valid, err := s.sessions.IsValid(ctx, claims.TokenID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return uuid.Nil, model.ErrTokenRevoked
	}

	return claims.UserID, nil
}

// Revoke invalidates the presented token. Revoking an already-revoked
// token succeeds; only a structurally invalid token is an error.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return err
	}

	if err := s.sessions.Revoke(ctx, claims.TokenID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Debug("Token service: token revoked",
		"user_id", claims.UserID,
		"token_id", claims.TokenID)

	return nil
}

// RevokeAll invalidates every active token belonging to the user.
func (s *TokenService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}

	s.logger.Debug("Token service: all tokens revoked", "user_id", userID)
	return nil
}
