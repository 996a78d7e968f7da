package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Type       string    `gorm:"type:varchar(32);not null;index"`
	NewEmail   string    `gorm:"type:varchar(255)"`
	ExpiresAt  time.Time `gorm:"not null"`
	ConsumedAt *time.Time
	CreatedAt  time.Time

	// Associations
	Account Account `gorm:"foreignKey:AccountID"`
}
