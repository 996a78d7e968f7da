package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/infrastructure/models"
)

// PendingRegistrationRepository implements pending registration data operations
type PendingRegistrationRepository struct {
	db *gorm.DB
}

// NewPendingRegistrationRepository creates a new pending registration repository
func NewPendingRegistrationRepository(db *gorm.DB) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{db: db}
}

// Upsert replaces any existing pending row for the email. Delete-then-insert
// inside one transaction keeps the email uniqueness constraint authoritative
// and never leaves the email without a pending row.
func (r *PendingRegistrationRepository) Upsert(ctx context.Context, reg *entities.PendingRegistration) error {
	return GetDB(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", reg.Email).Delete(&models.PendingRegistration{}).Error; err != nil {
			return err
		}

		m := &models.PendingRegistration{
			ID:                reg.ID,
			Email:             reg.Email,
			Name:              reg.Name,
			PasswordHash:      reg.PasswordHash,
			PreferredLanguage: reg.PreferredLanguage,
			TokenHash:         reg.TokenHash,
			ExpiresAt:         reg.ExpiresAt,
			CreatedAt:         reg.CreatedAt,
		}
		if err := tx.Create(m).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

// GetByEmail gets the pending registration for an email
func (r *PendingRegistrationRepository) GetByEmail(ctx context.Context, email string) (*entities.PendingRegistration, error) {
	var m models.PendingRegistration
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPendingRegistrationEntity(&m), nil
}

// GetByEmailAndTokenHash gets the pending row by exact (email, token hash) match
func (r *PendingRegistrationRepository) GetByEmailAndTokenHash(ctx context.Context, email, tokenHash string) (*entities.PendingRegistration, error) {
	var m models.PendingRegistration
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("email = ? AND token_hash = ?", email, tokenHash).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPendingRegistrationEntity(&m), nil
}

// DeleteByEmail removes the pending row for an email
func (r *PendingRegistrationRepository) DeleteByEmail(ctx context.Context, email string) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PendingRegistration{}).Error
}

func toPendingRegistrationEntity(m *models.PendingRegistration) *entities.PendingRegistration {
	return &entities.PendingRegistration{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		PreferredLanguage: m.PreferredLanguage,
		TokenHash:         m.TokenHash,
		ExpiresAt:         m.ExpiresAt,
		CreatedAt:         m.CreatedAt,
	}
}
