package service

import (
	"context"
	"strings"
	"time"

	"stock-manager/internal/domain"
	"stock-manager/internal/repository"

	"github.com/google/uuid"
)

// ClientInput carries the fields of a client to create or update.
type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// ClientService manages the client directory.
type ClientService interface {
	AddClient(ctx context.Context, input ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, input ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClients(ctx context.Context) ([]*domain.Client, error)
	RecentClients(ctx context.Context) ([]*domain.Client, error)
	SearchClients(ctx context.Context, query string) ([]*domain.Client, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new instance of ClientService
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

// AddClient creates a client with unique email and phone
func (s *clientService) AddClient(ctx context.Context, input ClientInput) (*domain.Client, error) {
	if err := validateClientFields(input); err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// UpdateClient edits an existing client
func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, input ClientInput) (*domain.Client, error) {
	if err := validateClientFields(input); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(input.Name)
	client.Email = strings.TrimSpace(input.Email)
	client.Phone = strings.TrimSpace(input.Phone)
	client.Address = strings.TrimSpace(input.Address)

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, id)
}

func (s *clientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clientRepo.ListAll(ctx)
}

func (s *clientService) RecentClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clientRepo.ListRecent(ctx, recentListLimit)
}

func (s *clientService) SearchClients(ctx context.Context, query string) ([]*domain.Client, error) {
	return s.clientRepo.Search(ctx, query, recentListLimit)
}

func validateClientFields(input ClientInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationErrorf("client name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return validationErrorf("client email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return validationErrorf("client phone is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return validationErrorf("client address is required")
	}
	return nil
}
