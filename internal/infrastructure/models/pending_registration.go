package models

import (
	"time"

	"github.com/google/uuid"
)

type PendingRegistration struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name              string    `gorm:"type:varchar(100);not null"`
	PasswordHash      string    `gorm:"type:varchar(255);not null"`
	PreferredLanguage string    `gorm:"type:varchar(10);not null;default:'en'"`
	TokenHash         string    `gorm:"type:varchar(64);not null;index"`
	ExpiresAt         time.Time `gorm:"not null"`
	CreatedAt         time.Time
}
