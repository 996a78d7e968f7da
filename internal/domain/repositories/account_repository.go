package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
)

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// RecordLoginFailure writes the new failure counter and optional lockout
	// timestamp, conditioned on the counter still holding expectedCount. It
	// reports whether the write applied; false means a concurrent attempt got
	// there first and the caller's increment is already accounted for.
	RecordLoginFailure(ctx context.Context, id uuid.UUID, expectedCount, newCount int, lockedUntil *time.Time) (bool, error)

	// RecordLoginSuccess resets the failure counter, clears the lockout and
	// stamps last_login_at in a single write.
	RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error
}
