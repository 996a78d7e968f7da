package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/infrastructure/models"
)

// RefreshTokenRepository implements refresh token data operations
type RefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create inserts a new refresh row. Hash collisions surface as
// ErrAlreadyExists so the caller can regenerate the opaque token.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *entities.RefreshToken) error {
	m := &models.RefreshToken{
		ID:        token.ID,
		AccountID: token.AccountID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
		CreatedAt: token.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetLiveByHash finds the non-revoked, non-expired row for a token hash
func (r *RefreshTokenRepository) GetLiveByHash(ctx context.Context, hash string, now time.Time) (*entities.RefreshToken, error) {
	var m models.RefreshToken
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("token_hash = ? AND revoked = ? AND expires_at > ?", hash, false, now).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toRefreshTokenEntity(&m), nil
}

// Revoke is the compare-and-swap on the revoked flag. Zero affected rows
// means a concurrent rotation consumed the token first.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RevokeByHash revokes matching non-revoked rows. Idempotent: no match is
// not an error.
func (r *RefreshTokenRepository) RevokeByHash(ctx context.Context, hash string, at time.Time) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": at,
		}).Error
}

// DeleteRevokedBefore prunes the account's revoked rows past retention
func (r *RefreshTokenRepository) DeleteRevokedBefore(ctx context.Context, accountID uuid.UUID, cutoff time.Time) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ? AND revoked = ? AND revoked_at < ?", accountID, true, cutoff).
		Delete(&models.RefreshToken{}).Error
}

// DeleteAllRevokedBefore prunes revoked rows past retention across accounts
func (r *RefreshTokenRepository) DeleteAllRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Where("revoked = ? AND revoked_at < ?", true, cutoff).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

func toRefreshTokenEntity(m *models.RefreshToken) *entities.RefreshToken {
	return &entities.RefreshToken{
		ID:        m.ID,
		AccountID: m.AccountID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		Revoked:   m.Revoked,
		RevokedAt: null.TimeFromPtr(m.RevokedAt),
		CreatedAt: m.CreatedAt,
	}
}
