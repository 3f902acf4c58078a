package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore tracks the revocation state of issued tokens. There is at
// most one session per token ID and token IDs are never reused, so Revoke
// is monotonic: once a session is revoked it never becomes valid again.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	// IsValid reports whether a non-revoked session exists for the token ID.
	IsValid(ctx context.Context, tokenID string) (bool, error)
	// Revoke marks the session revoked. Revoking an already-revoked or
	// unknown session is a no-op, not an error.
	Revoke(ctx context.Context, tokenID string) error
	// RevokeAll revokes every active session belonging to the user.
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// Session records one token issuance. The token itself stays with the
// client; the server keeps only this validity record.
type Session struct {
	ID        uuid.UUID
	TokenID   string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
