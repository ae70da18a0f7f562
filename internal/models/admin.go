package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin represents an administrator who manages forms and clients
type Admin struct {
	ID           string         `json:"id" gorm:"primaryKey;type:uuid"`
	Username     string         `json:"username" gorm:"not null;uniqueIndex" validate:"required,min=3,max=50"`
	Email        string         `json:"email" gorm:"not null;uniqueIndex" validate:"required,email"`
	PasswordHash string         `json:"-" gorm:"not null"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for Admin
func (Admin) TableName() string {
	return "admins"
}

// BeforeCreate assigns an id when the caller did not supply one
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
