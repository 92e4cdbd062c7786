package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a persisted session credential. A row is valid iff it is
// not revoked and not expired; logout flips is_revoked, and the cleanup
// sweep deletes rows that are expired or revoked.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    UserID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UserAgent string
	IsRevoked bool
}

// Valid reports whether the token is usable at the given instant.
func (t *RefreshToken) Valid(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
