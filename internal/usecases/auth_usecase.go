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
	"shop-kita.backend/pkg/metrics"
)

// AuthUsecase handles credential verification and the lockout state machine
type AuthUsecase struct {
	accountRepo repositories.AccountRepository
	sessions    *SessionUsecase
	lockout     LockoutPolicy
	bcryptCost  int
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accountRepo repositories.AccountRepository,
	sessions *SessionUsecase,
	lockout LockoutPolicy,
	bcryptCost int,
) *AuthUsecase {
	return &AuthUsecase{
		accountRepo: accountRepo,
		sessions:    sessions,
		lockout:     lockout,
		bcryptCost:  bcryptCost,
	}
}

// Login authenticates an account and returns a fresh token pair. Unknown
// accounts and wrong passwords return the same error; a locked account is
// rejected before the password is checked so the response cannot reveal
// whether the password would have matched.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	now := time.Now()

	account, err := u.accountRepo.GetByEmail(ctx, entities.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
			return nil, domainerrors.InvalidCredentials()
		}
		return nil, err
	}

	if account.IsLocked(now) {
		metrics.LoginAttempts.WithLabelValues(metrics.ResultLocked).Inc()
		return nil, domainerrors.Locked("Account temporarily locked. Try again later.")
	}

	if !crypto.CheckPassword(input.Password, account.PasswordHash) {
		newCount, lockedUntil := u.lockout.NextFailure(account.FailedLoginCount, now)
		// Conditional write keyed on the counter we read; losing the race
		// means a concurrent attempt already recorded a failure, which is
		// close enough for lockout accounting.
		if _, err := u.accountRepo.RecordLoginFailure(ctx, account.ID, account.FailedLoginCount, newCount, lockedUntil); err != nil {
			return nil, err
		}
		metrics.LoginAttempts.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		return nil, domainerrors.InvalidCredentials()
	}

	if err := u.accountRepo.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		return nil, err
	}

	pair, err := u.sessions.Issue(ctx, account)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Account:      account,
	}, nil
}

// GetAccountByID gets an account by ID
func (u *AuthUsecase) GetAccountByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return u.accountRepo.GetByID(ctx, id)
}

// ChangePassword verifies the current password and stores the new hash
func (u *AuthUsecase) ChangePassword(ctx context.Context, accountID uuid.UUID, input *entities.ChangePasswordInput) error {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !crypto.CheckPassword(input.CurrentPassword, account.PasswordHash) {
		return domainerrors.InvalidCredentials()
	}

	hash, err := crypto.HashPassword(input.NewPassword, u.bcryptCost)
	if err != nil {
		return domainerrors.InternalError(err)
	}

	return u.accountRepo.UpdatePassword(ctx, accountID, hash)
}
