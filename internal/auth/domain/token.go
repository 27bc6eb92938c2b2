package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is an opaque bearer token. Only the SHA-256 hash is stored.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
