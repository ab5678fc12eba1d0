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
	ErrAssignmentAccessDenied = errors.New("access denied to this assignment")
	ErrInvalidStatusChange    = errors.New("invalid assignment status change")
)

// --- Service Interface ---

// AssignmentService exposes read access to assignment records and the
// lifecycle transitions (active -> completed / cancelled).
type AssignmentService interface {
	GetAssignmentByID(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.PlanAssignment, error)
	GetAssignmentsByPlan(ctx context.Context, therapistID, planID primitive.ObjectID) ([]domain.PlanAssignment, error)
	GetAssignmentsByClient(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]domain.PlanAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, therapistID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.PlanAssignment, error)
}

// --- Service Implementation ---

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	planRepo       repository.PlanRepository
	clientRepo     repository.ClientRepository
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	planRepo repository.PlanRepository,
	clientRepo repository.ClientRepository,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		planRepo:       planRepo,
		clientRepo:     clientRepo,
	}
}

func (s *assignmentService) GetAssignmentByID(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.PlanAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.TherapistID != therapistID {
		return nil, ErrAssignmentAccessDenied
	}
	return assignment, nil
}

func (s *assignmentService) GetAssignmentsByPlan(ctx context.Context, therapistID, planID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.TherapistID != therapistID {
		return nil, ErrPlanAccessDenied
	}
	return s.assignmentRepo.GetByPlanID(ctx, planID)
}

func (s *assignmentService) GetAssignmentsByClient(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]domain.PlanAssignment, error) {
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
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}

// UpdateAssignmentStatus finishes or cancels an active assignment. Terminal
// states do not transition further.
func (s *assignmentService) UpdateAssignmentStatus(ctx context.Context, therapistID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.PlanAssignment, error) {
	switch status {
	case domain.AssignmentCompleted, domain.AssignmentCancelled:
	default:
		return nil, ErrInvalidStatusChange
	}

	assignment, err := s.GetAssignmentByID(ctx, therapistID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != domain.AssignmentActive {
		return nil, ErrInvalidStatusChange
	}

	assignment.Status = status
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}
