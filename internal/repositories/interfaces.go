package repositories

import (
	"context"
	"errors"

	"client-feedback-admin/internal/models"
)

// ErrNotFound is returned by GetByID lookups that match no row
var ErrNotFound = errors.New("record not found")

// ClientRepository defines the interface for client data operations.
// FindBy* lookups return (nil, nil) when nothing matches.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	FindByReferenceID(ctx context.Context, ref string) (*models.Client, error)
	GetAll(ctx context.Context) ([]*models.Client, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// AdminRepository defines the interface for administrator data operations
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
}

// ImportRunRepository defines the interface for import audit records
type ImportRunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) error
	GetRecent(ctx context.Context, limit int) ([]*models.ImportRun, error)
}
