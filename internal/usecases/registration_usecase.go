package usecases

import (
	"context"
	"errors"
	"time"

	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/domain/repositories"
	"shop-kita.backend/internal/infrastructure/email"
	"shop-kita.backend/pkg/crypto"
	"shop-kita.backend/pkg/metrics"
	"shop-kita.backend/pkg/utils"
)

// RegistrationUsecase handles the two-phase registration flow: a pending row
// holding the hashed verification token, then account creation on
// verification.
type RegistrationUsecase struct {
	accountRepo     repositories.AccountRepository
	pendingRepo     repositories.PendingRegistrationRepository
	uow             repositories.UnitOfWork
	sender          email.Sender
	frontendBaseURL string
	tokenExpiry     time.Duration
	bcryptCost      int
}

// NewRegistrationUsecase creates a new registration usecase
func NewRegistrationUsecase(
	accountRepo repositories.AccountRepository,
	pendingRepo repositories.PendingRegistrationRepository,
	uow repositories.UnitOfWork,
	sender email.Sender,
	frontendBaseURL string,
	tokenExpiry time.Duration,
	bcryptCost int,
) *RegistrationUsecase {
	return &RegistrationUsecase{
		accountRepo:     accountRepo,
		pendingRepo:     pendingRepo,
		uow:             uow,
		sender:          sender,
		frontendBaseURL: frontendBaseURL,
		tokenExpiry:     tokenExpiry,
		bcryptCost:      bcryptCost,
	}
}

// Register stores a pending registration and emails the verification link.
// A later registration for the same email supersedes the earlier pending
// row, so only the newest link verifies.
func (u *RegistrationUsecase) Register(ctx context.Context, input *entities.RegisterInput) error {
	emailAddr := entities.NormalizeEmail(input.Email)

	if _, err := u.accountRepo.GetByEmail(ctx, emailAddr); err == nil {
		metrics.Registrations.WithLabelValues(metrics.ResultConflict).Inc()
		return domainerrors.Conflict("Email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	passwordHash, err := crypto.HashPassword(input.Password, u.bcryptCost)
	if err != nil {
		return domainerrors.InternalError(err)
	}

	token, err := crypto.GenerateOpaqueToken()
	if err != nil {
		return domainerrors.InternalError(err)
	}

	now := time.Now()
	reg := &entities.PendingRegistration{
		ID:                utils.GenerateUUIDv7(),
		Email:             emailAddr,
		Name:              input.Name,
		PasswordHash:      passwordHash,
		PreferredLanguage: defaultLanguage(input.PreferredLanguage),
		TokenHash:         crypto.HashToken(token),
		ExpiresAt:         now.Add(u.tokenExpiry),
		CreatedAt:         now,
	}
	if err := u.pendingRepo.Upsert(ctx, reg); err != nil {
		// Two concurrent registers for the same email race on the unique
		// index; the loser reports the same conflict as a verified account.
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			metrics.Registrations.WithLabelValues(metrics.ResultConflict).Inc()
			return domainerrors.Conflict("Email already registered")
		}
		return err
	}

	metrics.Registrations.WithLabelValues(metrics.ResultRequested).Inc()

	// The pending row is persisted before the send, so a failed delivery
	// never corrupts token state. It still fails the call: the caller should
	// retry, which supersedes this row with a fresh token.
	return u.sendVerificationEmail(ctx, reg, token)
}

// VerifyEmail consumes the pending registration and creates the account.
// Not idempotent: a second call finds no pending row and fails.
func (u *RegistrationUsecase) VerifyEmail(ctx context.Context, input *entities.VerifyEmailInput) (*entities.Account, error) {
	emailAddr := entities.NormalizeEmail(input.Email)

	pending, err := u.pendingRepo.GetByEmailAndTokenHash(ctx, emailAddr, crypto.HashToken(input.Token))
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
		// Likely a duplicate click after success: report that the account is
		// already verified rather than a confusing invalid-token error.
		if _, accErr := u.accountRepo.GetByEmail(ctx, emailAddr); accErr == nil {
			return nil, domainerrors.Conflict("Email already verified")
		}
		return nil, domainerrors.BadRequest("Invalid verification token")
	}

	now := time.Now()
	if pending.IsExpired(now) {
		// Delete so a fresh registration with this email is unobstructed.
		if err := u.pendingRepo.DeleteByEmail(ctx, emailAddr); err != nil {
			return nil, err
		}
		return nil, domainerrors.BadRequest("Verification token expired. Please register again.")
	}

	account := &entities.Account{
		ID:                utils.GenerateUUIDv7(),
		Email:             pending.Email,
		Name:              pending.Name,
		PasswordHash:      pending.PasswordHash,
		Role:              entities.AccountRoleMember,
		PreferredLanguage: pending.PreferredLanguage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// Re-check inside the transaction: a concurrent verification or
		// registration may have created the account since the lookup above.
		if _, accErr := u.accountRepo.GetByEmail(txCtx, emailAddr); accErr == nil {
			if delErr := u.pendingRepo.DeleteByEmail(txCtx, emailAddr); delErr != nil {
				return delErr
			}
			return domainerrors.Conflict("Email already verified")
		} else if !errors.Is(accErr, domainerrors.ErrNotFound) {
			return accErr
		}

		if createErr := u.accountRepo.Create(txCtx, account); createErr != nil {
			if errors.Is(createErr, domainerrors.ErrAlreadyExists) {
				return domainerrors.Conflict("Email already verified")
			}
			return createErr
		}
		return u.pendingRepo.DeleteByEmail(txCtx, emailAddr)
	})
	if err != nil {
		return nil, err
	}

	metrics.Registrations.WithLabelValues(metrics.ResultVerified).Inc()
	return account, nil
}

// ResendVerification issues a fresh token on the existing pending row
func (u *RegistrationUsecase) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = entities.NormalizeEmail(emailAddr)

	if _, err := u.accountRepo.GetByEmail(ctx, emailAddr); err == nil {
		return domainerrors.Conflict("Email already verified")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	pending, err := u.pendingRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("No pending registration for this email")
		}
		return err
	}

	token, err := crypto.GenerateOpaqueToken()
	if err != nil {
		return domainerrors.InternalError(err)
	}

	pending.TokenHash = crypto.HashToken(token)
	pending.ExpiresAt = time.Now().Add(u.tokenExpiry)
	if err := u.pendingRepo.Upsert(ctx, pending); err != nil {
		return err
	}

	return u.sendVerificationEmail(ctx, pending, token)
}

func (u *RegistrationUsecase) sendVerificationEmail(ctx context.Context, reg *entities.PendingRegistration, token string) error {
	link := email.BuildLink(u.frontendBaseURL, email.FlowPath(entities.TokenTypeEmailVerification), token, reg.Email)
	subject, html, text := email.Render(entities.TokenTypeEmailVerification, reg.PreferredLanguage, link)

	if err := u.sender.Send(ctx, reg.Email, subject, html, text); err != nil {
		return domainerrors.InternalError(err)
	}
	metrics.VerificationEmails.WithLabelValues(string(entities.TokenTypeEmailVerification)).Inc()
	return nil
}

func defaultLanguage(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
