package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AccountRole represents account roles
type AccountRole string

const (
	AccountRoleAdmin  AccountRole = "ADMIN"
	AccountRoleMember AccountRole = "MEMBER"
)

// Account represents a verified account. Unverified registrations live in
// PendingRegistration until email verification creates the Account.
type Account struct {
	ID                uuid.UUID   `json:"id"`
	Email             string      `json:"email"`
	Name              string      `json:"name"`
	PasswordHash      string      `json:"-"`
	Role              AccountRole `json:"role"`
	PreferredLanguage string      `json:"preferredLanguage"`
	FailedLoginCount  int         `json:"-"`
	LockedUntil       null.Time   `json:"-"`
	LastLoginAt       null.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// IsLocked reports whether the account is locked out at the given instant
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil.Valid && a.LockedUntil.Time.After(now)
}

// NormalizeEmail lowercases and trims an email identifier. All email lookups
// go through this so the uniqueness invariant holds case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput represents input for requesting a registration
type RegisterInput struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=8"`
	Name              string `json:"name" binding:"required,min=2,max=100"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// LoginInput represents input for login
type LoginInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return only a session id
}

// VerifyEmailInput represents input for consuming a verification link
type VerifyEmailInput struct {
	Token string `json:"token" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput represents input for completing a password reset
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ChangePasswordInput represents input for changing the current password
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required,min=8"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangeEmailInput represents input for requesting an email change
type ChangeEmailInput struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
}

// AuthResponse carries the issued token pair. In session mode the handler
// keeps the pair server side and responds with a session id instead.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Account      *Account `json:"account"`
}
