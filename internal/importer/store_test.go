package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func createTestLogger() *logger.Logger {
	return &logger.Logger{Logger: logrus.New()}
}

func newTestReconciler() *Reconciler {
	return NewReconciler(createTestLogger(), NewFileReader())
}

// memoryStore is an in-memory RecordStore that enforces email uniqueness
type memoryStore struct {
	mu      sync.Mutex
	clients map[string]*models.Client
	order   []string
}

func newMemoryStore(seed ...*models.Client) *memoryStore {
	s := &memoryStore{clients: make(map[string]*models.Client)}
	for _, c := range seed {
		if err := s.Create(context.Background(), c); err != nil {
			panic(err)
		}
	}
	return s
}

func copyClient(c *models.Client) *models.Client {
	cp := *c
	cp.ExtraData = c.ExtraData.Clone()
	if c.ReferenceID != nil {
		ref := *c.ReferenceID
		cp.ReferenceID = &ref
	}
	return &cp
}

func (s *memoryStore) FindByReferenceID(ctx context.Context, ref string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if c := s.clients[id]; c.Reference() == ref {
			return copyClient(c), nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if c := s.clients[id]; c.Email == email {
			return copyClient(c), nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetAll(ctx context.Context) ([]*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Client, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, copyClient(s.clients[id]))
	}
	return out, nil
}

func (s *memoryStore) Create(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.Email == client.Email {
			return fmt.Errorf("duplicate key value violates unique constraint on email %q", client.Email)
		}
	}
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	s.clients[client.ID] = copyClient(client)
	s.order = append(s.order, client.ID)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return fmt.Errorf("client %s not found", client.ID)
	}
	for id, c := range s.clients {
		if id != client.ID && c.Email == client.Email {
			return fmt.Errorf("duplicate key value violates unique constraint on email %q", client.Email)
		}
	}
	s.clients[client.ID] = copyClient(client)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return fmt.Errorf("client %s not found", id)
	}
	delete(s.clients, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *memoryStore) emails() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.Email)
	}
	sort.Strings(out)
	return out
}

// MockRecordStore is a mock implementation of RecordStore for testing
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) FindByReferenceID(ctx context.Context, ref string) (*models.Client, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockRecordStore) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *MockRecordStore) GetAll(ctx context.Context) ([]*models.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Client), args.Error(1)
}

func (m *MockRecordStore) Create(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRecordStore) Update(ctx context.Context, client *models.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func clientWithRef(name, email, ref string) *models.Client {
	c := &models.Client{Name: name, Email: email}
	c.SetReference(ref)
	return c
}
