package repositories

import (
	"context"

	"shop-kita.backend/internal/domain/entities"
)

// PendingRegistrationRepository defines pending registration data operations
type PendingRegistrationRepository interface {
	// Upsert creates the pending row for the email, replacing any existing
	// one so only the newest verification link remains valid.
	Upsert(ctx context.Context, reg *entities.PendingRegistration) error

	GetByEmail(ctx context.Context, email string) (*entities.PendingRegistration, error)

	// GetByEmailAndTokenHash looks up the exact (email, token hash) pair
	// presented on a verification attempt.
	GetByEmailAndTokenHash(ctx context.Context, email, tokenHash string) (*entities.PendingRegistration, error)

	DeleteByEmail(ctx context.Context, email string) error
}
