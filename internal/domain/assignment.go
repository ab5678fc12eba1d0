package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for the assignment lifecycle
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// PlanAssignment links a TreatmentPlan to one Client.
type PlanAssignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TherapistID primitive.ObjectID `bson:"therapistId" json:"therapistId"` // Denormalized for queries/auth
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Status      AssignmentStatus   `bson:"status" json:"status"`
	// Schedule is attached when the batch requested auto-scheduling.
	Schedule   []ScheduledSession `bson:"schedule,omitempty" json:"schedule,omitempty"`
	AssignedAt time.Time          `bson:"assignedAt" json:"assignedAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Warning reasons produced by the bulk assignment conflict checks.
const (
	ReasonAlreadyAssigned       = "already assigned"
	ReasonConflictingActivePlan = "conflicting active plan"
)

// AssignmentSuccess records one accepted assignment within a batch.
type AssignmentSuccess struct {
	ClientID     primitive.ObjectID `json:"clientId"`
	ClientName   string             `json:"clientName,omitempty"`
	AssignmentID primitive.ObjectID `json:"assignmentId"`
	AssignedDate time.Time          `json:"assignedDate"`
}

// AssignmentWarning is a non-fatal classification; it does not necessarily
// block the assignment attempt for the same client.
type AssignmentWarning struct {
	ClientID   primitive.ObjectID `json:"clientId"`
	ClientName string             `json:"clientName,omitempty"`
	Reason     string             `json:"reason"`
	At         time.Time          `json:"at"`
}

// AssignmentFailure records a per-client persistence or scheduling failure.
type AssignmentFailure struct {
	ClientID   primitive.ObjectID `json:"clientId"`
	ClientName string             `json:"clientName,omitempty"`
	Error      string             `json:"error"`
	At         time.Time          `json:"at"`
}

// BulkAssignmentResult aggregates per-client outcomes of one batch, in input
// order. A client short-circuited by the already-assigned check appears only
// in Warnings; a client flagged for a same-type active plan can additionally
// appear in Successful or Failed.
type BulkAssignmentResult struct {
	Successful []AssignmentSuccess `json:"successful"`
	Warnings   []AssignmentWarning `json:"warnings"`
	Failed     []AssignmentFailure `json:"failed"`
}

// AssignmentSettings configures one bulk assignment batch.
type AssignmentSettings struct {
	StartDate    time.Time `json:"startDate"`
	Notes        string    `json:"notes,omitempty"`
	AutoSchedule bool      `json:"autoSchedule,omitempty"`
	// PreferredTime/SessionDurationMinutes only apply when AutoSchedule is set.
	PreferredTime          string `json:"preferredTime,omitempty"`
	SessionDurationMinutes int    `json:"sessionDurationMinutes,omitempty"`
}
