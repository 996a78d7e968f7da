package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
)

// RefreshTokenRepository defines refresh token data operations
type RefreshTokenRepository interface {
	// Create inserts a new refresh row. A hash collision with an existing row
	// surfaces as ErrAlreadyExists so callers can regenerate and retry.
	Create(ctx context.Context, token *entities.RefreshToken) error

	// GetLiveByHash finds the row for a token hash that is neither revoked
	// nor expired at the given instant.
	GetLiveByHash(ctx context.Context, hash string, now time.Time) (*entities.RefreshToken, error)

	// Revoke flips revoked=true only if the row is still revoked=false: the
	// compare-and-swap that makes rotation single-use under races. Reports
	// whether this caller won the swap.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RevokeByHash revokes any non-revoked rows matching the hash. Used by
	// logout; absence of a match is not an error.
	RevokeByHash(ctx context.Context, hash string, at time.Time) error

	// DeleteRevokedBefore hard-deletes the account's revoked rows whose
	// revocation predates the cutoff, bounding table growth.
	DeleteRevokedBefore(ctx context.Context, accountID uuid.UUID, cutoff time.Time) error

	// DeleteAllRevokedBefore is the cross-account variant used by the
	// background retention sweep. Returns the number of rows removed.
	DeleteAllRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
