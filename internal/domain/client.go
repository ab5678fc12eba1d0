// internal/domain/client.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivePlanRef is a denormalized view of a plan a client currently holds,
// carried on the roster entry so conflict checks need no extra lookups.
type ActivePlanRef struct {
	PlanID primitive.ObjectID `bson:"planId" json:"planId"`
	Name   string             `bson:"name" json:"name"`
	Type   string             `bson:"type" json:"type"`
	Status PlanStatus         `bson:"status" json:"status"`
}

// Client is a roster entry managed by a therapist. Clients do not log in;
// they exist as the target of plan assignments and progress tracking.
type Client struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TherapistID primitive.ObjectID `bson:"therapistId" json:"therapistId"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`

	// AssignedPlanIDs is the set of plans ever assigned to this client.
	AssignedPlanIDs []primitive.ObjectID `bson:"assignedPlanIds,omitempty" json:"assignedPlanIds,omitempty"`
	// ActivePlans is the subset currently active, used for conflict checks.
	ActivePlans []ActivePlanRef `bson:"activePlans,omitempty" json:"activePlans,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasPlan reports whether planID is already in the client's assigned set.
func (c *Client) HasPlan(planID primitive.ObjectID) bool {
	for _, id := range c.AssignedPlanIDs {
		if id == planID {
			return true
		}
	}
	return false
}

// HasActivePlanOfType reports whether the client holds an active plan
// sharing the given type/category.
func (c *Client) HasActivePlanOfType(planType string) bool {
	for _, ref := range c.ActivePlans {
		if ref.Type == planType && ref.Status == PlanStatusActive {
			return true
		}
	}
	return false
}

// AddAssignedPlan appends planID to the assigned set if not already present.
func (c *Client) AddAssignedPlan(planID primitive.ObjectID) {
	if !c.HasPlan(planID) {
		c.AssignedPlanIDs = append(c.AssignedPlanIDs, planID)
	}
}
