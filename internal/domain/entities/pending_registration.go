package entities

import (
	"time"

	"github.com/google/uuid"
)

// PendingRegistration holds a not-yet-verified registration. At most one
// exists per email; a later registration for the same email supersedes it.
// Only the hash of the verification token is stored.
type PendingRegistration struct {
	ID                uuid.UUID
	Email             string
	Name              string
	PasswordHash      string
	PreferredLanguage string
	TokenHash         string
	ExpiresAt         time.Time
	CreatedAt         time.Time
}

// IsExpired reports whether the registration window has passed
func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
