package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/repository"
	"serenity/practice-app/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNilPlan         = errors.New("plan is required for bulk assignment")
	ErrNilClientBatch  = errors.New("client batch must not be nil")
	ErrBatchValidation = errors.New("bulk assignment validation failed")
)

// Defaults applied when a batch requests auto-scheduling without settings.
const (
	defaultPreferredTime   = "10:00"
	defaultSessionDuration = 60
)

// --- Service Interface ---

// BulkAssignmentService assigns one plan to a batch of clients, classifying
// each client into exactly one terminal bucket (successful or failed) plus
// any warnings raised along the way. Processing is sequential in input order;
// one client's outcome never affects another's.
type BulkAssignmentService interface {
	// Assign runs the batch against already-loaded domain objects. Clients
	// are mutated in memory (assigned-plan membership) and the plan's
	// assigned-client count is bumped per accepted assignment; persisting
	// those side effects is the caller's concern. Assignment records go
	// through the assignment repository.
	Assign(ctx context.Context, plan *domain.TreatmentPlan, clients []*domain.Client, settings domain.AssignmentSettings) (*domain.BulkAssignmentResult, error)

	// AssignByIDs loads the plan and clients for the therapist, runs the
	// batch and persists the roster/plan side effects for each accepted
	// assignment.
	AssignByIDs(ctx context.Context, therapistID, planID primitive.ObjectID, clientIDs []primitive.ObjectID, settings domain.AssignmentSettings) (*domain.BulkAssignmentResult, error)
}

// --- Service Implementation ---

type bulkAssignmentService struct {
	planRepo       repository.PlanRepository
	clientRepo     repository.ClientRepository
	assignmentRepo repository.AssignmentRepository
	scheduler      schedule.Generator
	now            func() time.Time
}

// NewBulkAssignmentService creates a new instance of bulkAssignmentService.
func NewBulkAssignmentService(
	planRepo repository.PlanRepository,
	clientRepo repository.ClientRepository,
	assignmentRepo repository.AssignmentRepository,
	scheduler schedule.Generator,
) BulkAssignmentService {
	return &bulkAssignmentService{
		planRepo:       planRepo,
		clientRepo:     clientRepo,
		assignmentRepo: assignmentRepo,
		scheduler:      scheduler,
		now:            time.Now,
	}
}

// Assign processes the batch client by client. For each client:
//  1. already assigned this plan -> warning, skip to the next client;
//  2. active plan of the same type -> warning, but the attempt continues;
//  3. build the assignment record (schedule attached when requested) and
//     hand it to the assignment repository;
//  4. on acceptance, update the client and plan in memory and record a
//     success; on rejection or schedule failure, record a failure.
//
// Mutations committed before a later step fails are not rolled back.
func (s *bulkAssignmentService) Assign(ctx context.Context, plan *domain.TreatmentPlan, clients []*domain.Client, settings domain.AssignmentSettings) (*domain.BulkAssignmentResult, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}
	if clients == nil {
		return nil, ErrNilClientBatch
	}

	startDate := settings.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	result := &domain.BulkAssignmentResult{
		Successful: []domain.AssignmentSuccess{},
		Warnings:   []domain.AssignmentWarning{},
		Failed:     []domain.AssignmentFailure{},
	}

	for _, client := range clients {
		if client == nil {
			continue
		}

		if client.HasPlan(plan.ID) {
			result.Warnings = append(result.Warnings, domain.AssignmentWarning{
				ClientID:   client.ID,
				ClientName: client.Name,
				Reason:     domain.ReasonAlreadyAssigned,
				At:         s.now(),
			})
			continue
		}

		if client.HasActivePlanOfType(plan.Type) {
			result.Warnings = append(result.Warnings, domain.AssignmentWarning{
				ClientID:   client.ID,
				ClientName: client.Name,
				Reason:     domain.ReasonConflictingActivePlan,
				At:         s.now(),
			})
			// Not blocking: the therapist may intend parallel plans.
		}

		assignment := &domain.PlanAssignment{
			PlanID:      plan.ID,
			ClientID:    client.ID,
			TherapistID: plan.TherapistID,
			StartDate:   startDate,
			Notes:       settings.Notes,
			Status:      domain.AssignmentActive,
		}

		if settings.AutoSchedule {
			sessions, err := s.buildSchedule(plan, startDate, settings)
			if err != nil {
				result.Failed = append(result.Failed, domain.AssignmentFailure{
					ClientID:   client.ID,
					ClientName: client.Name,
					Error:      err.Error(),
					At:         s.now(),
				})
				continue
			}
			assignment.Schedule = sessions
		}

		assignmentID, err := s.assignmentRepo.AssignPlan(ctx, assignment)
		if err != nil {
			result.Failed = append(result.Failed, domain.AssignmentFailure{
				ClientID:   client.ID,
				ClientName: client.Name,
				Error:      err.Error(),
				At:         s.now(),
			})
			continue
		}

		client.AddAssignedPlan(plan.ID)
		client.ActivePlans = append(client.ActivePlans, domain.ActivePlanRef{
			PlanID: plan.ID,
			Name:   plan.Name,
			Type:   plan.Type,
			Status: plan.Status,
		})
		plan.AssignedClients++

		result.Successful = append(result.Successful, domain.AssignmentSuccess{
			ClientID:     client.ID,
			ClientName:   client.Name,
			AssignmentID: assignmentID,
			AssignedDate: startDate,
		})
	}

	return result, nil
}

func (s *bulkAssignmentService) buildSchedule(plan *domain.TreatmentPlan, startDate time.Time, settings domain.AssignmentSettings) ([]domain.ScheduledSession, error) {
	preferredTime := settings.PreferredTime
	if preferredTime == "" {
		preferredTime = defaultPreferredTime
	}
	duration := settings.SessionDurationMinutes
	if duration <= 0 {
		duration = defaultSessionDuration
	}

	sessions, err := s.scheduler.Generate(schedule.Params{
		StartDate:       startDate,
		SessionsPerWeek: plan.SessionsPerWeek,
		TotalSessions:   plan.EffectiveTotalSessions(),
		PreferredTime:   preferredTime,
		DurationMinutes: duration,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule generation failed: %w", err)
	}
	return sessions, nil
}

// AssignByIDs is the transport-facing entry point: it resolves the plan and
// clients, runs the batch, then persists the per-client side effects.
func (s *bulkAssignmentService) AssignByIDs(ctx context.Context, therapistID, planID primitive.ObjectID, clientIDs []primitive.ObjectID, settings domain.AssignmentSettings) (*domain.BulkAssignmentResult, error) {
	if therapistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, fmt.Errorf("%w: therapist and plan IDs are required", ErrBatchValidation)
	}
	if clientIDs == nil {
		return nil, ErrNilClientBatch
	}

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

	clients := make([]*domain.Client, 0, len(clientIDs))
	result := &domain.BulkAssignmentResult{
		Successful: []domain.AssignmentSuccess{},
		Warnings:   []domain.AssignmentWarning{},
		Failed:     []domain.AssignmentFailure{},
	}
	for _, clientID := range clientIDs {
		client, err := s.clientRepo.GetByID(ctx, clientID)
		if err != nil {
			result.Failed = append(result.Failed, domain.AssignmentFailure{
				ClientID: clientID,
				Error:    "client lookup failed: " + err.Error(),
				At:       s.now(),
			})
			continue
		}
		if client.TherapistID != therapistID {
			result.Failed = append(result.Failed, domain.AssignmentFailure{
				ClientID:   clientID,
				ClientName: client.Name,
				Error:      "client does not belong to this therapist",
				At:         s.now(),
			})
			continue
		}
		clients = append(clients, client)
	}

	batch, err := s.Assign(ctx, plan, clients, settings)
	if err != nil {
		return nil, err
	}
	result.Successful = append(result.Successful, batch.Successful...)
	result.Warnings = append(result.Warnings, batch.Warnings...)
	result.Failed = append(result.Failed, batch.Failed...)

	// Persist roster membership and the plan's assigned-client count for the
	// accepted assignments only.
	for _, success := range batch.Successful {
		if err := s.clientRepo.AddAssignedPlan(ctx, success.ClientID, plan); err != nil {
			result.Warnings = append(result.Warnings, domain.AssignmentWarning{
				ClientID:   success.ClientID,
				ClientName: success.ClientName,
				Reason:     "roster update failed: " + err.Error(),
				At:         s.now(),
			})
		}
	}
	if n := len(batch.Successful); n > 0 {
		if err := s.planRepo.IncrementAssignedClients(ctx, plan.ID, n); err != nil {
			result.Warnings = append(result.Warnings, domain.AssignmentWarning{
				Reason: "assigned-client count update failed: " + err.Error(),
				At:     s.now(),
			})
		}
	}

	return result, nil
}
