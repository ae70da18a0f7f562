package repositories

import (
	"context"

	"client-feedback-admin/internal/database"
	"client-feedback-admin/internal/models"
)

// importRunRepository implements ImportRunRepository
type importRunRepository struct {
	db *database.Connection
}

// NewImportRunRepository creates a new import run repository
func NewImportRunRepository(db *database.Connection) ImportRunRepository {
	return &importRunRepository{db: db}
}

// Create records a completed import
func (r *importRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetRecent returns the latest import runs with their administrator
func (r *importRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	var runs []*models.ImportRun
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
