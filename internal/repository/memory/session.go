package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avrorin/identity-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps session records in process memory. Revocations
// are lost on restart, which is acceptable when tokens are short-lived.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	byUser   map[uuid.UUID][]string
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]model.Session),
		byUser:   make(map[uuid.UUID][]string),
	}
}

func (r *SessionRepository) Create(_ context.Context, session model.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.TokenID] = session
	r.byUser[session.UserID] = append(r.byUser[session.UserID], session.TokenID)
	return nil
}

func (r *SessionRepository) IsValid(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[tokenID]
	if !ok {
		return false, nil
	}
	return session.RevokedAt == nil, nil
}

// Revoke is idempotent: revoking an unknown or already-revoked token is a
// no-op. The revoked state only ever moves from false to true.
func (r *SessionRepository) Revoke(_ context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revokeLocked(tokenID)
	return nil
}

func (r *SessionRepository) RevokeAll(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tokenID := range r.byUser[userID] {
		r.revokeLocked(tokenID)
	}
	return nil
}

func (r *SessionRepository) revokeLocked(tokenID string) {
	session, ok := r.sessions[tokenID]
	if !ok || session.RevokedAt != nil {
		return
	}
	now := time.Now()
	session.RevokedAt = &now
	r.sessions[tokenID] = session
}
