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

// VerificationTokenRepository implements single-use token data operations
type VerificationTokenRepository struct {
	db *gorm.DB
}

// NewVerificationTokenRepository creates a new verification token repository
func NewVerificationTokenRepository(db *gorm.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// Create creates a new verification token row
func (r *VerificationTokenRepository) Create(ctx context.Context, token *entities.VerificationToken) error {
	m := &models.VerificationToken{
		ID:        token.ID,
		AccountID: token.AccountID,
		TokenHash: token.TokenHash,
		Type:      string(token.Type),
		NewEmail:  token.NewEmail,
		ExpiresAt: token.ExpiresAt,
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

// GetUsableByHash finds an unconsumed, unexpired token matching hash+type
func (r *VerificationTokenRepository) GetUsableByHash(ctx context.Context, hash string, tokenType entities.VerificationTokenType, now time.Time) (*entities.VerificationToken, error) {
	var m models.VerificationToken
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("token_hash = ? AND type = ? AND consumed_at IS NULL AND expires_at > ?", hash, string(tokenType), now).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVerificationTokenEntity(&m), nil
}

// Consume stamps consumed_at only while the token is still unconsumed
func (r *VerificationTokenRepository) Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.VerificationToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteUnconsumed removes the account's unconsumed tokens of a type
func (r *VerificationTokenRepository) DeleteUnconsumed(ctx context.Context, accountID uuid.UUID, tokenType entities.VerificationTokenType) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ? AND type = ? AND consumed_at IS NULL", accountID, string(tokenType)).
		Delete(&models.VerificationToken{}).Error
}

func toVerificationTokenEntity(m *models.VerificationToken) *entities.VerificationToken {
	return &entities.VerificationToken{
		ID:         m.ID,
		AccountID:  m.AccountID,
		TokenHash:  m.TokenHash,
		Type:       entities.VerificationTokenType(m.Type),
		NewEmail:   m.NewEmail,
		ExpiresAt:  m.ExpiresAt,
		ConsumedAt: null.TimeFromPtr(m.ConsumedAt),
		CreatedAt:  m.CreatedAt,
	}
}
