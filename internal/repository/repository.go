package repository

import (
	"context"

	"serenity/practice-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TherapistRepository defines the interface for therapist account data.
type TherapistRepository interface {
	Create(ctx context.Context, therapist *domain.Therapist) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Therapist, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Therapist, error)
}

// PlanRepository defines the interface for treatment plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.TreatmentPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TreatmentPlan, error)
	GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.TreatmentPlan, error)
	Update(ctx context.Context, plan *domain.TreatmentPlan) error
	Delete(ctx context.Context, id, therapistID primitive.ObjectID) error // Ensure therapist owns the plan
	IncrementAssignedClients(ctx context.Context, id primitive.ObjectID, delta int) error
}

// ClientRepository defines the interface for roster data.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error)
	// AddAssignedPlan persists plan membership, including the ActivePlans ref
	// used by conflict checks.
	AddAssignedPlan(ctx context.Context, clientID primitive.ObjectID, plan *domain.TreatmentPlan) error
}

// AssignmentRepository is the sole persistence boundary the bulk assignment
// engine calls. AssignPlan either accepts the record or rejects it with an
// error; there is no partial acceptance.
type AssignmentRepository interface {
	AssignPlan(ctx context.Context, assignment *domain.PlanAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanAssignment, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanAssignment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.PlanAssignment, error)
	Update(ctx context.Context, assignment *domain.PlanAssignment) error
}

// ProgressRepository defines the interface for per-assignment progress state.
type ProgressRepository interface {
	Create(ctx context.Context, record *domain.ProgressRecord) (primitive.ObjectID, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) (*domain.ProgressRecord, error)
	Update(ctx context.Context, record *domain.ProgressRecord) error
}
