package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
)

// VerificationTokenRepository defines single-use token data operations
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *entities.VerificationToken) error

	// GetUsableByHash finds a token matching hash+type with consumed_at null
	// and expiry in the future.
	GetUsableByHash(ctx context.Context, hash string, tokenType entities.VerificationTokenType, now time.Time) (*entities.VerificationToken, error)

	// Consume stamps consumed_at only if the token is still unconsumed,
	// reporting whether this caller consumed it.
	Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// DeleteUnconsumed removes the account's unconsumed tokens of the given
	// type, so only the most recently issued link stays valid.
	DeleteUnconsumed(ctx context.Context, accountID uuid.UUID, tokenType entities.VerificationTokenType) error
}
