package service

import (
	"context"
	"errors"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientAccessDenied = errors.New("access denied to this client")
	ErrClientValidation   = errors.New("client validation failed")
)

// --- Service Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, therapistID primitive.ObjectID, name, email string) (*domain.Client, error)
	GetClientByID(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error)
	GetClientsByTherapist(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error)
}

// --- Service Implementation ---

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new instance of clientService.
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{
		clientRepo: clientRepo,
	}
}

// CreateClient adds a client to the therapist's roster.
func (s *clientService) CreateClient(ctx context.Context, therapistID primitive.ObjectID, name, email string) (*domain.Client, error) {
	if therapistID == primitive.NilObjectID {
		return nil, errors.New("therapist ID is required to create a client")
	}
	if name == "" {
		return nil, ErrClientValidation
	}

	client := &domain.Client{
		TherapistID: therapistID,
		Name:        name,
		Email:       email,
	}

	clientID, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return nil, err
	}
	return s.clientRepo.GetByID(ctx, clientID)
}

// GetClientByID retrieves a client, ensuring it belongs to the therapist.
func (s *clientService) GetClientByID(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.TherapistID != therapistID {
		return nil, ErrClientAccessDenied
	}
	return client, nil
}

// GetClientsByTherapist lists the therapist's roster.
func (s *clientService) GetClientsByTherapist(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error) {
	if therapistID == primitive.NilObjectID {
		return nil, errors.New("therapist ID cannot be nil")
	}
	return s.clientRepo.GetByTherapistID(ctx, therapistID)
}
