package repositories

import (
	"context"
	"errors"

	"client-feedback-admin/internal/database"
	"client-feedback-admin/internal/models"

	"gorm.io/gorm"
)

// adminRepository implements AdminRepository
type adminRepository struct {
	db *database.Connection
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *database.Connection) AdminRepository {
	return &adminRepository{db: db}
}

// Create creates a new administrator
func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// GetByID retrieves an administrator by ID
func (r *adminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// GetByUsername retrieves an administrator by username
func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Update updates an existing administrator
func (r *adminRepository) Update(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Save(admin).Error
}
