package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenCodec encodes and decodes signed bearer tokens. Both operations are
// pure given a fixed signing secret; Decode fails with ErrInvalidToken on
// any tampering or malformed input and with ErrTokenExpired past expiry.
type TokenCodec interface {
	Encode(userID uuid.UUID, tokenID string, issuedAt, expiresAt time.Time) (string, error)
	Decode(token string) (TokenClaims, error)
}

// TokenClaims is the decoded content of a bearer token.
type TokenClaims struct {
	UserID    uuid.UUID
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is an issued bearer token together with its metadata.
type Token struct {
	Value     string
	TokenID   string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}
