package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avrorin/identity-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps session records in redis. Each record carries a
// TTL equal to the remaining token lifetime, so the registry self-cleans
// once a token would be rejected as expired anyway. A revoked or expired
// session and a never-issued one are indistinguishable, which matches the
// registry contract: both are invalid.
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(tokenID string) string {
	return fmt.Sprintf("session:%s", tokenID)
}

func userKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_sessions:%s", userID)
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.TokenID), session.UserID.String(), ttl)
	pipe.SAdd(ctx, userKey(session.UserID), session.TokenID)
	pipe.Expire(ctx, userKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) IsValid(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session validity: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes the session record. DEL on a missing key is a no-op, so
// concurrent revocations of the same token ID never conflict.
func (r *SessionRepository) Revoke(ctx context.Context, tokenID string) error {
	if err := r.client.Del(ctx, sessionKey(tokenID)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	tokenIDs, err := r.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokenIDs)+1)
	for _, tokenID := range tokenIDs {
		keys = append(keys, sessionKey(tokenID))
	}
	keys = append(keys, userKey(userID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke sessions by user: %w", err)
	}
	return nil
}
