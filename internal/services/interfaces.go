package services

import (
	"context"
	"errors"
	"time"

	"client-feedback-admin/internal/importer"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"
)

var (
	ErrImportNotFound     = errors.New("import not found or expired")
	ErrImportForbidden    = errors.New("import belongs to another administrator")
	ErrNoValidRecords     = errors.New("no valid client records found in the file")
	ErrClientNotFound     = errors.New("client not found")
	ErrEmailTaken         = errors.New("email already in use by another client")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// the client repository is the reconciler's record store
var _ importer.RecordStore = (repositories.ClientRepository)(nil)

// AuthenticationService defines the interface for administrator authentication
type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (string, *models.Admin, error)
	GenerateJWT(ctx context.Context, admin *models.Admin) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*models.Admin, error)
	HashPassword(password string) (string, error)
}

// ClientService defines the interface for manual client management
type ClientService interface {
	List(ctx context.Context) ([]*models.Client, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, adminID string, req *models.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, id string, req *models.ClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id string) error
}

// ImportService drives one client import from upload to confirmation
type ImportService interface {
	Stage(ctx context.Context, adminID string, upload Upload, opts ImportOptions) (*ImportSession, error)
	Preview(ctx context.Context, adminID, importID string) (*ImportSession, error)
	Confirm(ctx context.Context, adminID, importID string) (*ImportSummary, error)
	Cancel(ctx context.Context, adminID, importID string) error
	RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error)
}

// StagingStore holds classified imports between preview and confirmation.
// Get and Delete return ErrImportNotFound for unknown or expired sessions.
type StagingStore interface {
	Put(ctx context.Context, session *ImportSession, ttl time.Duration) error
	Get(ctx context.Context, importID string) (*ImportSession, error)
	Delete(ctx context.Context, importID string) error
}
