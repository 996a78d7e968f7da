package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name              string     `gorm:"type:varchar(100);not null"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"`
	Role              string     `gorm:"type:varchar(50);not null;default:'MEMBER'"`
	PreferredLanguage string     `gorm:"type:varchar(10);not null;default:'en'"`
	FailedLoginCount  int        `gorm:"not null;default:0"`
	LockedUntil       *time.Time `gorm:"type:timestamp"`
	LastLoginAt       *time.Time `gorm:"type:timestamp"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}
