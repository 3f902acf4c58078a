package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avrorin/identity-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository is the durable session registry backend. Revocations
// survive server restarts until the tokens expire naturally.
type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO sessions (
            id, token_id, user_id, issued_at, expires_at, revoked_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
    `

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		session.ID, session.TokenID, session.UserID,
		session.IssuedAt, session.ExpiresAt, session.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) IsValid(ctx context.Context, tokenID string) (bool, error) {
	const query = `
        SELECT revoked_at IS NULL FROM sessions WHERE token_id = $1
    `
	var valid bool
	err := r.db.QueryRow(ctx, query, tokenID).Scan(&valid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check session validity: %w", err)
	}
	return valid, nil
}

// Revoke marks the session revoked. The revoked_at IS NULL guard makes
// concurrent revocations of the same token ID idempotent.
func (r *SessionRepository) Revoke(ctx context.Context, tokenID string) error {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE token_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, tokenID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions by user: %w", err)
	}
	return nil
}
