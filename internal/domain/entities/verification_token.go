package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationTokenType discriminates the single-use token flows
type VerificationTokenType string

const (
	TokenTypeEmailVerification VerificationTokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     VerificationTokenType = "PASSWORD_RESET"
	TokenTypeEmailChange       VerificationTokenType = "EMAIL_CHANGE"
)

// VerificationToken is a generic single-use, hashed, expiring token. A token
// is usable iff ConsumedAt is null and ExpiresAt is in the future. For
// EMAIL_CHANGE, NewEmail carries the address being verified.
type VerificationToken struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	TokenHash  string
	Type       VerificationTokenType
	NewEmail   string
	ExpiresAt  time.Time
	ConsumedAt null.Time
	CreatedAt  time.Time
}

// IsUsable reports whether the token can still be consumed
func (t *VerificationToken) IsUsable(now time.Time) bool {
	return !t.ConsumedAt.Valid && t.ExpiresAt.After(now)
}
