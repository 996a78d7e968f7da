package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
)

func newPendingRegistration(email, tokenHash string) *entities.PendingRegistration {
	return &entities.PendingRegistration{
		ID:                uuid.New(),
		Email:             email,
		Name:              "Pending Person",
		PasswordHash:      "hash",
		PreferredLanguage: "en",
		TokenHash:         tokenHash,
		ExpiresAt:         time.Now().Add(24 * time.Hour),
		CreatedAt:         time.Now(),
	}
}

func TestPendingRegistrationRepository_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	createPendingRegistrationTable(t, db)
	repo := NewPendingRegistrationRepository(db)
	ctx := context.Background()

	reg := newPendingRegistration("new@shopkita.io", "token-hash-1")
	require.NoError(t, repo.Upsert(ctx, reg))

	got, err := repo.GetByEmail(ctx, "new@shopkita.io")
	require.NoError(t, err)
	require.Equal(t, reg.ID, got.ID)
	require.Equal(t, "token-hash-1", got.TokenHash)

	byToken, err := repo.GetByEmailAndTokenHash(ctx, "new@shopkita.io", "token-hash-1")
	require.NoError(t, err)
	require.Equal(t, reg.ID, byToken.ID)
}

func TestPendingRegistrationRepository_UpsertSupersedes(t *testing.T) {
	db := newTestDB(t)
	createPendingRegistrationTable(t, db)
	repo := NewPendingRegistrationRepository(db)
	ctx := context.Background()

	first := newPendingRegistration("re@shopkita.io", "first-token")
	require.NoError(t, repo.Upsert(ctx, first))

	second := newPendingRegistration("re@shopkita.io", "second-token")
	require.NoError(t, repo.Upsert(ctx, second))

	// The first token is gone: only the newest link verifies.
	_, err := repo.GetByEmailAndTokenHash(ctx, "re@shopkita.io", "first-token")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	got, err := repo.GetByEmail(ctx, "re@shopkita.io")
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	var count int64
	require.NoError(t, db.Table("pending_registrations").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPendingRegistrationRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	createPendingRegistrationTable(t, db)
	repo := NewPendingRegistrationRepository(db)
	ctx := context.Background()

	reg := newPendingRegistration("gone@shopkita.io", "t")
	require.NoError(t, repo.Upsert(ctx, reg))
	require.NoError(t, repo.DeleteByEmail(ctx, "gone@shopkita.io"))

	_, err := repo.GetByEmail(ctx, "gone@shopkita.io")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Deleting again is not an error.
	require.NoError(t, repo.DeleteByEmail(ctx, "gone@shopkita.io"))
}
