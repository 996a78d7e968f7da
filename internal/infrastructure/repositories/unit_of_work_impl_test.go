package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
)

func TestUnitOfWork_CommitsBothWrites(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createVerificationTokenTable(t, db)

	uow := NewUnitOfWork(db)
	accountRepo := NewAccountRepository(db)
	tokenRepo := NewVerificationTokenRepository(db)
	ctx := context.Background()

	a := newAccount("tx@shopkita.io")
	require.NoError(t, accountRepo.Create(ctx, a))
	tok := newVerificationToken(a.ID, "tx-hash", entities.TokenTypePasswordReset)
	require.NoError(t, tokenRepo.Create(ctx, tok))

	err := uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := tokenRepo.Consume(txCtx, tok.ID, time.Now()); err != nil {
			return err
		}
		return accountRepo.UpdatePassword(txCtx, a.ID, "rotated-hash")
	})
	require.NoError(t, err)

	got, err := accountRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "rotated-hash", got.PasswordHash)

	_, err = tokenRepo.GetUsableByHash(ctx, "tx-hash", entities.TokenTypePasswordReset, time.Now())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	createAccountTable(t, db)
	createVerificationTokenTable(t, db)

	uow := NewUnitOfWork(db)
	accountRepo := NewAccountRepository(db)
	tokenRepo := NewVerificationTokenRepository(db)
	ctx := context.Background()

	a := newAccount("rollback@shopkita.io")
	require.NoError(t, accountRepo.Create(ctx, a))
	tok := newVerificationToken(a.ID, "rb-hash", entities.TokenTypePasswordReset)
	require.NoError(t, tokenRepo.Create(ctx, tok))

	boom := errors.New("boom")
	err := uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := tokenRepo.Consume(txCtx, tok.ID, time.Now()); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The consume inside the failed transaction never happened.
	_, err = tokenRepo.GetUsableByHash(ctx, "rb-hash", entities.TokenTypePasswordReset, time.Now())
	require.NoError(t, err)
}
