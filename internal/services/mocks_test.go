package services

import (
	"context"
	"fmt"
	"sync"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// createTestLogger creates a logger for testing
func createTestLogger() *logger.Logger {
	return &logger.Logger{Logger: logrus.New()}
}

func createTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
		},
		Import: config.ImportConfig{
			ReferenceFieldName: "Client Reference",
			StagingTTL:         60,
		},
	}
}

// MockAdminRepository is a mock implementation of AdminRepository for testing
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

// MockImportRunRepository is a mock implementation of ImportRunRepository for testing
type MockImportRunRepository struct {
	mock.Mock
}

func (m *MockImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockImportRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ImportRun), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepository for testing
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) FindByReferenceID(ctx context.Context, ref string) (*models.Client, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockClientRepository) GetAll(ctx context.Context) ([]*models.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryClientRepository is a working in-memory ClientRepository
type memoryClientRepository struct {
	mu      sync.Mutex
	clients map[string]models.Client
}

func newMemoryClientRepository() *memoryClientRepository {
	return &memoryClientRepository{clients: make(map[string]models.Client)}
}

func (r *memoryClientRepository) snapshot(c models.Client) *models.Client {
	c.ExtraData = c.ExtraData.Clone()
	return &c
}

func (r *memoryClientRepository) Create(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == client.Email {
			return fmt.Errorf("duplicate email %s", client.Email)
		}
	}
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	r.clients[client.ID] = *r.snapshot(*client)
	return nil
}

func (r *memoryClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.snapshot(c), nil
}

func (r *memoryClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Email == email {
			return r.snapshot(c), nil
		}
	}
	return nil, nil
}

func (r *memoryClientRepository) FindByReferenceID(ctx context.Context, ref string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Reference() == ref {
			return r.snapshot(c), nil
		}
	}
	return nil, nil
}

func (r *memoryClientRepository) GetAll(ctx context.Context) ([]*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, r.snapshot(c))
	}
	return out, nil
}

func (r *memoryClientRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.clients)), nil
}

func (r *memoryClientRepository) Update(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.clients[client.ID] = *r.snapshot(*client)
	return nil
}

func (r *memoryClientRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}
