package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/domain/repositories"
	"shop-kita.backend/internal/infrastructure/email"
	"shop-kita.backend/pkg/crypto"
	"shop-kita.backend/pkg/metrics"
	"shop-kita.backend/pkg/utils"
)

// VerificationUsecase handles the single-use token flows that act on
// existing accounts: password reset and email change.
type VerificationUsecase struct {
	accountRepo       repositories.AccountRepository
	verificationRepo  repositories.VerificationTokenRepository
	uow               repositories.UnitOfWork
	sender            email.Sender
	frontendBaseURL   string
	resetExpiry       time.Duration
	emailChangeExpiry time.Duration
	bcryptCost        int
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	accountRepo repositories.AccountRepository,
	verificationRepo repositories.VerificationTokenRepository,
	uow repositories.UnitOfWork,
	sender email.Sender,
	frontendBaseURL string,
	resetExpiry time.Duration,
	emailChangeExpiry time.Duration,
	bcryptCost int,
) *VerificationUsecase {
	return &VerificationUsecase{
		accountRepo:       accountRepo,
		verificationRepo:  verificationRepo,
		uow:               uow,
		sender:            sender,
		frontendBaseURL:   frontendBaseURL,
		resetExpiry:       resetExpiry,
		emailChangeExpiry: emailChangeExpiry,
		bcryptCost:        bcryptCost,
	}
}

// RequestPasswordReset issues a reset token for the account. It reports
// success even when no account matches, so the endpoint cannot be used to
// probe which emails are registered.
func (u *VerificationUsecase) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = entities.NormalizeEmail(emailAddr)

	account, err := u.accountRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	// Earlier unconsumed reset tokens stop working once a new one is issued.
	if err := u.verificationRepo.DeleteUnconsumed(ctx, account.ID, entities.TokenTypePasswordReset); err != nil {
		return err
	}

	token, err := crypto.GenerateOpaqueToken()
	if err != nil {
		return domainerrors.InternalError(err)
	}

	now := time.Now()
	vt := &entities.VerificationToken{
		ID:        utils.GenerateUUIDv7(),
		AccountID: account.ID,
		TokenHash: crypto.HashToken(token),
		Type:      entities.TokenTypePasswordReset,
		ExpiresAt: now.Add(u.resetExpiry),
		CreatedAt: now,
	}
	if err := u.verificationRepo.Create(ctx, vt); err != nil {
		return err
	}

	link := email.BuildLink(u.frontendBaseURL, email.FlowPath(entities.TokenTypePasswordReset), token, account.Email)
	subject, html, text := email.Render(entities.TokenTypePasswordReset, account.PreferredLanguage, link)
	if err := u.sender.Send(ctx, account.Email, subject, html, text); err != nil {
		return domainerrors.InternalError(err)
	}
	metrics.VerificationEmails.WithLabelValues(string(entities.TokenTypePasswordReset)).Inc()
	return nil
}

// ResetPassword consumes a reset token and sets the new password. The
// consume and the password write commit together, so a token is never
// burned without the password actually changing.
func (u *VerificationUsecase) ResetPassword(ctx context.Context, input *entities.ResetPasswordInput) error {
	now := time.Now()

	vt, err := u.verificationRepo.GetUsableByHash(ctx, crypto.HashToken(input.Token), entities.TokenTypePasswordReset, now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.InvalidOrExpiredVerification()
		}
		return err
	}

	passwordHash, err := crypto.HashPassword(input.NewPassword, u.bcryptCost)
	if err != nil {
		return domainerrors.InternalError(err)
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		consumed, consumeErr := u.verificationRepo.Consume(txCtx, vt.ID, now)
		if consumeErr != nil {
			return consumeErr
		}
		if !consumed {
			return domainerrors.InvalidOrExpiredVerification()
		}
		return u.accountRepo.UpdatePassword(txCtx, vt.AccountID, passwordHash)
	})
}

// RequestEmailChange issues an email-change token carrying the new address.
// The confirmation link goes to the NEW address, proving the caller
// controls it.
func (u *VerificationUsecase) RequestEmailChange(ctx context.Context, accountID uuid.UUID, input *entities.ChangeEmailInput) error {
	newEmail := entities.NormalizeEmail(input.NewEmail)

	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.Email == newEmail {
		return domainerrors.BadRequest("New email is the same as the current email")
	}

	if _, err := u.accountRepo.GetByEmail(ctx, newEmail); err == nil {
		return domainerrors.Conflict("Email already in use")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	if err := u.verificationRepo.DeleteUnconsumed(ctx, account.ID, entities.TokenTypeEmailChange); err != nil {
		return err
	}

	token, err := crypto.GenerateOpaqueToken()
	if err != nil {
		return domainerrors.InternalError(err)
	}

	now := time.Now()
	vt := &entities.VerificationToken{
		ID:        utils.GenerateUUIDv7(),
		AccountID: account.ID,
		TokenHash: crypto.HashToken(token),
		Type:      entities.TokenTypeEmailChange,
		NewEmail:  newEmail,
		ExpiresAt: now.Add(u.emailChangeExpiry),
		CreatedAt: now,
	}
	if err := u.verificationRepo.Create(ctx, vt); err != nil {
		return err
	}

	link := email.BuildLink(u.frontendBaseURL, email.FlowPath(entities.TokenTypeEmailChange), token, newEmail)
	subject, html, text := email.Render(entities.TokenTypeEmailChange, account.PreferredLanguage, link)
	if err := u.sender.Send(ctx, newEmail, subject, html, text); err != nil {
		return domainerrors.InternalError(err)
	}
	metrics.VerificationEmails.WithLabelValues(string(entities.TokenTypeEmailChange)).Inc()
	return nil
}

// ConfirmEmailChange consumes the token and moves the account to the new
// address. The presented email must match the address the token was issued
// for.
func (u *VerificationUsecase) ConfirmEmailChange(ctx context.Context, input *entities.VerifyEmailInput) error {
	now := time.Now()

	vt, err := u.verificationRepo.GetUsableByHash(ctx, crypto.HashToken(input.Token), entities.TokenTypeEmailChange, now)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.InvalidOrExpiredVerification()
		}
		return err
	}
	if vt.NewEmail != entities.NormalizeEmail(input.Email) {
		return domainerrors.InvalidOrExpiredVerification()
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		consumed, consumeErr := u.verificationRepo.Consume(txCtx, vt.ID, now)
		if consumeErr != nil {
			return consumeErr
		}
		if !consumed {
			return domainerrors.InvalidOrExpiredVerification()
		}
		return u.accountRepo.UpdateEmail(txCtx, vt.AccountID, vt.NewEmail)
	})
	if err != nil {
		// Another account may have claimed the address between issue and
		// confirm. The unique index is the arbiter.
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return domainerrors.Conflict("Email already in use")
		}
		return err
	}
	return nil
}
