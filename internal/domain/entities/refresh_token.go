package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// RefreshToken is the persisted half of a refresh credential. The hash
// column is unique; a row is live iff revoked=false and not expired. Rows
// flip to revoked exactly once and are pruned after the retention window.
type RefreshToken struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt null.Time
	CreatedAt time.Time
}

// IsLive reports whether the token can still be rotated
func (t *RefreshToken) IsLive(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
