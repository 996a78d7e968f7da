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

// AccountRepository implements account data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{
		ID:                account.ID,
		Email:             account.Email,
		Name:              account.Name,
		PasswordHash:      account.PasswordHash,
		Role:              string(account.Role),
		PreferredLanguage: account.PreferredLanguage,
		FailedLoginCount:  account.FailedLoginCount,
		CreatedAt:         account.CreatedAt,
		UpdatedAt:         account.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// GetByEmail gets an account by normalized email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", entities.NormalizeEmail(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// UpdateEmail updates the account's email address
func (r *AccountRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email":      entities.NormalizeEmail(email),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdatePassword updates the account's password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// RecordLoginFailure writes the failure counter conditioned on its previous
// value, so concurrent failed logins never lose an increment.
func (r *AccountRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, expectedCount, newCount int, lockedUntil *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"failed_login_count": newCount,
		"updated_at":         time.Now(),
	}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND failed_login_count = ?", id, expectedCount).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RecordLoginSuccess resets the lockout state and stamps last_login_at
func (r *AccountRepository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_count": 0,
			"locked_until":       nil,
			"last_login_at":      at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toAccountEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Role:              entities.AccountRole(m.Role),
		PreferredLanguage: m.PreferredLanguage,
		FailedLoginCount:  m.FailedLoginCount,
		LockedUntil:       null.TimeFromPtr(m.LockedUntil),
		LastLoginAt:       null.TimeFromPtr(m.LastLoginAt),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
