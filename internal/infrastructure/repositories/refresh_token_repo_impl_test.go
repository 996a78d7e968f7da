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

func newRefreshToken(accountID uuid.UUID, hash string) *entities.RefreshToken {
	return &entities.RefreshToken{
		ID:        uuid.New(),
		AccountID: accountID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

func TestRefreshTokenRepository_CreateAndGetLive(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	accountID := uuid.New()
	tok := newRefreshToken(accountID, "hash-1")
	require.NoError(t, repo.Create(ctx, tok))

	live, err := repo.GetLiveByHash(ctx, "hash-1", time.Now())
	require.NoError(t, err)
	require.Equal(t, tok.ID, live.ID)
	require.Equal(t, accountID, live.AccountID)
	require.False(t, live.Revoked)
}

func TestRefreshTokenRepository_HashCollision(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRefreshToken(uuid.New(), "same-hash")))
	err := repo.Create(ctx, newRefreshToken(uuid.New(), "same-hash"))
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestRefreshTokenRepository_GetLiveByHash_ExcludesDeadRows(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	expired := newRefreshToken(uuid.New(), "expired-hash")
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, expired))

	revoked := newRefreshToken(uuid.New(), "revoked-hash")
	require.NoError(t, repo.Create(ctx, revoked))
	applied, err := repo.Revoke(ctx, revoked.ID, now)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = repo.GetLiveByHash(ctx, "expired-hash", now)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetLiveByHash(ctx, "revoked-hash", now)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetLiveByHash(ctx, "never-existed", now)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRefreshTokenRepository_Revoke_SingleUse(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	tok := newRefreshToken(uuid.New(), "rotate-me")
	require.NoError(t, repo.Create(ctx, tok))

	// Exactly one revoke wins; every later attempt sees zero affected rows.
	applied, err := repo.Revoke(ctx, tok.ID, time.Now())
	require.NoError(t, err)
	require.True(t, applied)

	for i := 0; i < 3; i++ {
		applied, err = repo.Revoke(ctx, tok.ID, time.Now())
		require.NoError(t, err)
		require.False(t, applied)
	}
}

func TestRefreshTokenRepository_RevokeByHash_Idempotent(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()

	tok := newRefreshToken(uuid.New(), "logout-hash")
	require.NoError(t, repo.Create(ctx, tok))

	require.NoError(t, repo.RevokeByHash(ctx, "logout-hash", time.Now()))
	_, err := repo.GetLiveByHash(ctx, "logout-hash", time.Now())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Repeat and unknown hashes are fine.
	require.NoError(t, repo.RevokeByHash(ctx, "logout-hash", time.Now()))
	require.NoError(t, repo.RevokeByHash(ctx, "unknown-hash", time.Now()))
}

func TestRefreshTokenRepository_Pruning(t *testing.T) {
	db := newTestDB(t)
	createRefreshTokenTable(t, db)
	repo := NewRefreshTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	accountID := uuid.New()

	old := newRefreshToken(accountID, "old-revoked")
	require.NoError(t, repo.Create(ctx, old))
	_, err := repo.Revoke(ctx, old.ID, now.Add(-8*24*time.Hour))
	require.NoError(t, err)

	recent := newRefreshToken(accountID, "recent-revoked")
	require.NoError(t, repo.Create(ctx, recent))
	_, err = repo.Revoke(ctx, recent.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	live := newRefreshToken(accountID, "still-live")
	require.NoError(t, repo.Create(ctx, live))

	cutoff := now.Add(-7 * 24 * time.Hour)
	require.NoError(t, repo.DeleteRevokedBefore(ctx, accountID, cutoff))

	var count int64
	require.NoError(t, db.Table("refresh_tokens").Count(&count).Error)
	require.EqualValues(t, 2, count)

	// Cross-account sweep removes the remaining revoked row once past cutoff.
	deleted, err := repo.DeleteAllRevokedBefore(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = repo.GetLiveByHash(ctx, "still-live", now)
	require.NoError(t, err)
}
