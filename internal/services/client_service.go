package services

import (
	"context"
	"errors"
	"strings"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"
)

// clientService implements ClientService
type clientService struct {
	logger    *logger.Logger
	repo      repositories.ClientRepository
	validator *models.ValidationService
}

// NewClientService creates a new client service
func NewClientService(logger *logger.Logger, repo repositories.ClientRepository, validator *models.ValidationService) ClientService {
	return &clientService{
		logger:    logger,
		repo:      repo,
		validator: validator,
	}
}

// List returns every client, newest first
func (s *clientService) List(ctx context.Context) ([]*models.Client, error) {
	return s.repo.GetAll(ctx)
}

// Get returns a single client
func (s *clientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	return client, err
}

// Create adds a client by hand. The email must not belong to another client.
func (s *clientService) Create(ctx context.Context, adminID string, req *models.ClientRequest) (*models.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	client := &models.Client{
		Name:      req.Name,
		Email:     req.Email,
		ExtraData: models.StringMap(req.ExtraData).Clone(),
		CreatedBy: adminID,
	}
	client.SetReference(strings.TrimSpace(client.ExtraData[models.ClientIDKey]))

	if err := s.repo.Create(ctx, client); err != nil {
		s.logger.WithUser(adminID).WithError(err).Error("Failed to create client")
		return nil, err
	}

	s.logger.WithUser(adminID).WithField("client_id", client.ID).Info("Client created")
	return client, nil
}

// Update changes a client's name and email. Extra data is left alone.
func (s *clientService) Update(ctx context.Context, id string, req *models.ClientRequest) (*models.Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != client.Email {
		owner, err := s.repo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if owner != nil && owner.ID != client.ID {
			return nil, ErrEmailTaken
		}
	}

	client.Name = req.Name
	client.Email = req.Email
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	s.logger.WithField("client_id", client.ID).Info("Client updated")
	return client, nil
}

// Delete removes a client
func (s *clientService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrClientNotFound
	}
	if err != nil {
		return err
	}
	s.logger.WithField("client_id", id).Info("Client deleted")
	return nil
}
