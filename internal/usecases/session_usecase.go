package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/domain/repositories"
	"shop-kita.backend/pkg/crypto"
	"shop-kita.backend/pkg/jwt"
	"shop-kita.backend/pkg/metrics"
	"shop-kita.backend/pkg/utils"
)

// maxHashCollisionRetries bounds regeneration when a freshly generated
// refresh token's hash collides with an existing row. Exhausting it only
// happens under adversarial collision, so it maps to unauthorized rather
// than a server error.
const maxHashCollisionRetries = 3

// SessionUsecase issues, rotates and revokes refresh-token-backed sessions
type SessionUsecase struct {
	refreshRepo repositories.RefreshTokenRepository
	accountRepo repositories.AccountRepository
	jwtService  *jwt.Service
	retention   time.Duration
}

// NewSessionUsecase creates a new session usecase
func NewSessionUsecase(
	refreshRepo repositories.RefreshTokenRepository,
	accountRepo repositories.AccountRepository,
	jwtService *jwt.Service,
	retention time.Duration,
) *SessionUsecase {
	return &SessionUsecase{
		refreshRepo: refreshRepo,
		accountRepo: accountRepo,
		jwtService:  jwtService,
		retention:   retention,
	}
}

// Issue signs a token pair for a fresh login and persists the refresh row.
// Concurrent logins for the same account coexist as independent sessions.
func (u *SessionUsecase) Issue(ctx context.Context, account *entities.Account) (*jwt.TokenPair, error) {
	now := time.Now()

	// Bounded cleanup, not correctness-critical.
	if err := u.refreshRepo.DeleteRevokedBefore(ctx, account.ID, now.Add(-u.retention)); err != nil {
		return nil, err
	}

	return u.signAndStore(ctx, account.ID, string(account.Role), now)
}

// Rotate exchanges a still-valid refresh token for a new pair, invalidating
// the presented one. Exactly one of N concurrent rotations of the same token
// succeeds; the rest fail unauthorized.
func (u *SessionUsecase) Rotate(ctx context.Context, presentedToken string) (*jwt.TokenPair, *entities.Account, error) {
	now := time.Now()

	row, err := u.refreshRepo.GetLiveByHash(ctx, crypto.HashToken(presentedToken), now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.TokenRotations.WithLabelValues(metrics.ResultRejected).Inc()
			return nil, nil, domainerrors.InvalidOrExpiredToken()
		}
		return nil, nil, err
	}

	account, err := u.accountRepo.GetByID(ctx, row.AccountID)
	if err != nil {
		return nil, nil, err
	}

	// The compare-and-swap: zero affected rows means a concurrent rotation
	// consumed this token first, and this caller loses.
	won, err := u.refreshRepo.Revoke(ctx, row.ID, now)
	if err != nil {
		return nil, nil, err
	}
	if !won {
		metrics.TokenRotations.WithLabelValues(metrics.ResultReuseDetected).Inc()
		return nil, nil, domainerrors.InvalidOrExpiredToken()
	}

	if err := u.refreshRepo.DeleteRevokedBefore(ctx, account.ID, now.Add(-u.retention)); err != nil {
		return nil, nil, err
	}

	pair, err := u.signAndStore(ctx, account.ID, string(account.Role), now)
	if err != nil {
		return nil, nil, err
	}

	metrics.TokenRotations.WithLabelValues(metrics.ResultSuccess).Inc()
	return pair, account, nil
}

// Logout revokes the presented refresh token. Best-effort and idempotent:
// an unknown or already-revoked token is not an error.
func (u *SessionUsecase) Logout(ctx context.Context, presentedToken string) error {
	return u.refreshRepo.RevokeByHash(ctx, crypto.HashToken(presentedToken), time.Now())
}

func (u *SessionUsecase) signAndStore(ctx context.Context, accountID uuid.UUID, role string, now time.Time) (*jwt.TokenPair, error) {
	for attempt := 0; attempt < maxHashCollisionRetries; attempt++ {
		pair, err := u.jwtService.SignPair(accountID, role)
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}

		row := &entities.RefreshToken{
			ID:        utils.GenerateUUIDv7(),
			AccountID: accountID,
			TokenHash: crypto.HashToken(pair.RefreshToken),
			ExpiresAt: now.Add(u.jwtService.RefreshExpiry()),
			CreatedAt: now,
		}

		err = u.refreshRepo.Create(ctx, row)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, err
		}
		// Hash collision: regenerate and retry.
	}
	return nil, domainerrors.InvalidOrExpiredToken()
}
