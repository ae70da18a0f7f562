package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/middleware"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/services"
)

func createTestLogger() *logger.Logger {
	return &logger.Logger{Logger: logrus.New()}
}

var testAdmin = &models.Admin{ID: "3f0c7a52-2c39-4a4e-9a51-1d1b8f4f7d10", Username: "admin", IsActive: true}

// newTestRouter mounts register under /api/v1 with testAdmin already authenticated
func newTestRouter(register func(*mux.Router)) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithAdmin(r.Context(), testAdmin)))
		})
	})
	register(api)
	return router
}

// MockAuthenticationService is a mock implementation of AuthenticationService
type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, username, password string) (string, *models.Admin, error) {
	args := m.Called(ctx, username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.Admin), args.Error(2)
}

func (m *MockAuthenticationService) GenerateJWT(ctx context.Context, admin *models.Admin) (string, error) {
	args := m.Called(ctx, admin)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticationService) ValidateJWT(ctx context.Context, token string) (*models.Admin, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAuthenticationService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// MockClientService is a mock implementation of ClientService
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) List(ctx context.Context) ([]*models.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Create(ctx context.Context, adminID string, req *models.ClientRequest) (*models.Client, error) {
	args := m.Called(ctx, adminID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Update(ctx context.Context, id string, req *models.ClientRequest) (*models.Client, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Stage(ctx context.Context, adminID string, upload services.Upload, opts services.ImportOptions) (*services.ImportSession, error) {
	args := m.Called(ctx, adminID, upload, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportSession), args.Error(1)
}

func (m *MockImportService) Preview(ctx context.Context, adminID, importID string) (*services.ImportSession, error) {
	args := m.Called(ctx, adminID, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportSession), args.Error(1)
}

func (m *MockImportService) Confirm(ctx context.Context, adminID, importID string) (*services.ImportSummary, error) {
	args := m.Called(ctx, adminID, importID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportSummary), args.Error(1)
}

func (m *MockImportService) Cancel(ctx context.Context, adminID, importID string) error {
	args := m.Called(ctx, adminID, importID)
	return args.Error(0)
}

func (m *MockImportService) RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ImportRun), args.Error(1)
}
