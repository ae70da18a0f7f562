package repositories

import (
	"context"
	"errors"

	"client-feedback-admin/internal/database"
	"client-feedback-admin/internal/models"

	"gorm.io/gorm"
)

// clientRepository implements ClientRepository
type clientRepository struct {
	db *database.Connection
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *database.Connection) ClientRepository {
	return &clientRepository{db: db}
}

// Create inserts a new client
func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// GetByID retrieves a client by ID
func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindByEmail retrieves a client by its normalised email
func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByReferenceID retrieves a client by reference id, checking the
// dedicated column first and then extra_data for rows written before it existed
func (r *clientRepository) FindByReferenceID(ctx context.Context, ref string) (*models.Client, error) {
	client, err := r.findOne(ctx, "reference_id = ?", ref)
	if err != nil || client != nil {
		return client, err
	}
	return r.findOne(ctx, "extra_data->>'"+models.ClientIDKey+"' = ?", ref)
}

func (r *clientRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).Where(query, args...).Take(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetAll retrieves every client, newest first
func (r *clientRepository) GetAll(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&clients).Error
	return clients, err
}

// Count returns the number of stored clients
func (r *clientRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Client{}).Count(&count).Error
	return count, err
}

// Update saves every column of an existing client
func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// Delete permanently removes a client
func (r *clientRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
