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
	ErrPlanNotFound       = errors.New("treatment plan not found")
	ErrPlanAccessDenied   = errors.New("access denied to modify or delete this plan")
	ErrPlanValidation     = errors.New("treatment plan validation failed")
	ErrPlanHasAssignments = errors.New("plan has assigned clients and cannot be deleted")
)

// PlanInput carries the editable fields of a treatment plan.
type PlanInput struct {
	Name            string
	Description     string
	Type            string
	Status          domain.PlanStatus
	DurationWeeks   int
	SessionsPerWeek int
	TotalSessions   int
	Objectives      []string
	Techniques      []string
	Homework        []string
}

// --- Service Interface ---
type PlanService interface {
	CreatePlan(ctx context.Context, therapistID primitive.ObjectID, input PlanInput) (*domain.TreatmentPlan, error)
	GetPlanByID(ctx context.Context, planID primitive.ObjectID) (*domain.TreatmentPlan, error)
	GetPlansByTherapist(ctx context.Context, therapistID primitive.ObjectID) ([]domain.TreatmentPlan, error)
	UpdatePlan(ctx context.Context, therapistID, planID primitive.ObjectID, input PlanInput) (*domain.TreatmentPlan, error)
	DeletePlan(ctx context.Context, therapistID, planID primitive.ObjectID) error
	ClonePlan(ctx context.Context, therapistID, planID primitive.ObjectID) (*domain.TreatmentPlan, error)
	ArchivePlan(ctx context.Context, therapistID, planID primitive.ObjectID) (*domain.TreatmentPlan, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo repository.PlanRepository
}

// NewPlanService creates a new instance of planService.
func NewPlanService(planRepo repository.PlanRepository) PlanService {
	return &planService{
		planRepo: planRepo,
	}
}

func validatePlanInput(input PlanInput) error {
	if input.Name == "" {
		return ErrPlanValidation
	}
	if input.DurationWeeks <= 0 {
		return ErrPlanValidation
	}
	if input.SessionsPerWeek < 1 || input.SessionsPerWeek > 7 {
		return ErrPlanValidation
	}
	if input.TotalSessions < 0 {
		return ErrPlanValidation
	}
	switch input.Status {
	case "", domain.PlanStatusDraft, domain.PlanStatusActive, domain.PlanStatusArchived:
	default:
		return ErrPlanValidation
	}
	return nil
}

// CreatePlan handles the creation of a new treatment plan by a therapist.
func (s *planService) CreatePlan(ctx context.Context, therapistID primitive.ObjectID, input PlanInput) (*domain.TreatmentPlan, error) {
	if therapistID == primitive.NilObjectID {
		return nil, errors.New("therapist ID is required to create a plan")
	}
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.PlanStatusDraft
	}
	plan := &domain.TreatmentPlan{
		TherapistID:     therapistID,
		Name:            input.Name,
		Description:     input.Description,
		Type:            input.Type,
		Status:          status,
		DurationWeeks:   input.DurationWeeks,
		SessionsPerWeek: input.SessionsPerWeek,
		TotalSessions:   input.TotalSessions,
		Objectives:      input.Objectives,
		Techniques:      input.Techniques,
		Homework:        input.Homework,
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, planID)
}

// GetPlanByID retrieves a single plan.
func (s *planService) GetPlanByID(ctx context.Context, planID primitive.ObjectID) (*domain.TreatmentPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetPlansByTherapist retrieves all plans owned by a therapist.
func (s *planService) GetPlansByTherapist(ctx context.Context, therapistID primitive.ObjectID) ([]domain.TreatmentPlan, error) {
	if therapistID == primitive.NilObjectID {
		return nil, errors.New("therapist ID cannot be nil")
	}
	return s.planRepo.GetByTherapistID(ctx, therapistID)
}

// UpdatePlan handles updating an existing plan, ensuring ownership.
func (s *planService) UpdatePlan(ctx context.Context, therapistID, planID primitive.ObjectID, input PlanInput) (*domain.TreatmentPlan, error) {
	if therapistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("therapist ID and plan ID are required")
	}
	if err := validatePlanInput(input); err != nil {
		return nil, err
	}

	existing, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if existing.TherapistID != therapistID {
		return nil, ErrPlanAccessDenied
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Type = input.Type
	if input.Status != "" {
		existing.Status = input.Status
	}
	existing.DurationWeeks = input.DurationWeeks
	existing.SessionsPerWeek = input.SessionsPerWeek
	existing.TotalSessions = input.TotalSessions
	existing.Objectives = input.Objectives
	existing.Techniques = input.Techniques
	existing.Homework = input.Homework

	if err := s.planRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return existing, nil
}

// DeletePlan removes a plan, refusing while clients still hold it.
func (s *planService) DeletePlan(ctx context.Context, therapistID, planID primitive.ObjectID) error {
	if therapistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return errors.New("therapist ID and plan ID are required")
	}

	existing, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if existing.TherapistID != therapistID {
		return ErrPlanAccessDenied
	}
	if existing.AssignedClients > 0 {
		return ErrPlanHasAssignments
	}

	if err := s.planRepo.Delete(ctx, planID, therapistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

// ClonePlan duplicates a plan as a fresh draft with no assigned clients.
func (s *planService) ClonePlan(ctx context.Context, therapistID, planID primitive.ObjectID) (*domain.TreatmentPlan, error) {
	if therapistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("therapist ID and plan ID are required")
	}

	source, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if source.TherapistID != therapistID {
		return nil, ErrPlanAccessDenied
	}

	clone := &domain.TreatmentPlan{
		TherapistID:     therapistID,
		Name:            source.Name + " (Copy)",
		Description:     source.Description,
		Type:            source.Type,
		Status:          domain.PlanStatusDraft,
		DurationWeeks:   source.DurationWeeks,
		SessionsPerWeek: source.SessionsPerWeek,
		TotalSessions:   source.TotalSessions,
		Objectives:      append([]string(nil), source.Objectives...),
		Techniques:      append([]string(nil), source.Techniques...),
		Homework:        append([]string(nil), source.Homework...),
	}

	cloneID, err := s.planRepo.Create(ctx, clone)
	if err != nil {
		return nil, err
	}
	return s.planRepo.GetByID(ctx, cloneID)
}

// ArchivePlan marks a plan archived so it stops participating in conflict
// checks. Like deletion it is refused while clients still hold the plan.
func (s *planService) ArchivePlan(ctx context.Context, therapistID, planID primitive.ObjectID) (*domain.TreatmentPlan, error) {
	if therapistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("therapist ID and plan ID are required")
	}

	existing, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if existing.TherapistID != therapistID {
		return nil, ErrPlanAccessDenied
	}
	if existing.AssignedClients > 0 {
		return nil, ErrPlanHasAssignments
	}

	existing.Status = domain.PlanStatusArchived
	if err := s.planRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
