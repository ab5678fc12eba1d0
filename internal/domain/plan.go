// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus type for the treatment plan lifecycle
type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// TreatmentPlan is a reusable plan template owned by a therapist.
// Cadence (DurationWeeks, SessionsPerWeek) drives schedule generation;
// the objective/homework lists seed per-client progress records.
type TreatmentPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TherapistID primitive.ObjectID `bson:"therapistId" json:"therapistId"` // Who created/owns the plan
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        string             `bson:"type" json:"type"` // e.g. "anxiety", "depression", "couples"
	Status      PlanStatus         `bson:"status" json:"status"`

	DurationWeeks   int `bson:"durationWeeks" json:"durationWeeks"`
	SessionsPerWeek int `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	// TotalSessions overrides DurationWeeks*SessionsPerWeek when > 0.
	TotalSessions int `bson:"totalSessions,omitempty" json:"totalSessions,omitempty"`

	Objectives []string `bson:"objectives,omitempty" json:"objectives,omitempty"`
	Techniques []string `bson:"techniques,omitempty" json:"techniques,omitempty"`
	Homework   []string `bson:"homework,omitempty" json:"homework,omitempty"`

	// AssignedClients counts accepted assignments of this plan (denormalized).
	AssignedClients int `bson:"assignedClients" json:"assignedClients"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveTotalSessions returns the session count the plan actually schedules.
func (p *TreatmentPlan) EffectiveTotalSessions() int {
	if p.TotalSessions > 0 {
		return p.TotalSessions
	}
	return p.DurationWeeks * p.SessionsPerWeek
}
