package service

import (
	"context"
	"errors"
	"testing"

	"serenity/practice-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func planInputFixture() PlanInput {
	return PlanInput{
		Name:            "CBT for Anxiety",
		Description:     "12-session exposure program",
		Type:            "anxiety",
		DurationWeeks:   6,
		SessionsPerWeek: 2,
		Objectives:      []string{"Identify triggers", "Practice grounding"},
		Homework:        []string{"Thought diary"},
	}
}

func TestCreatePlanDefaultsToDraft(t *testing.T) {
	repo := newMockPlanRepo()
	svc := NewPlanService(repo)
	therapistID := primitive.NewObjectID()

	plan, err := svc.CreatePlan(context.Background(), therapistID, planInputFixture())
	if err != nil {
		t.Fatalf("CreatePlan returned error: %v", err)
	}
	if plan.Status != domain.PlanStatusDraft {
		t.Errorf("status = %q, want draft", plan.Status)
	}
	if plan.TherapistID != therapistID {
		t.Errorf("therapist ID not carried onto the plan")
	}
	if plan.EffectiveTotalSessions() != 12 {
		t.Errorf("effective sessions = %d, want 12", plan.EffectiveTotalSessions())
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := NewPlanService(newMockPlanRepo())
	therapistID := primitive.NewObjectID()

	cases := []struct {
		name   string
		mutate func(*PlanInput)
	}{
		{"empty name", func(in *PlanInput) { in.Name = "" }},
		{"zero duration", func(in *PlanInput) { in.DurationWeeks = 0 }},
		{"cadence too low", func(in *PlanInput) { in.SessionsPerWeek = 0 }},
		{"cadence too high", func(in *PlanInput) { in.SessionsPerWeek = 8 }},
		{"negative override", func(in *PlanInput) { in.TotalSessions = -1 }},
		{"bogus status", func(in *PlanInput) { in.Status = "paused" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := planInputFixture()
			tc.mutate(&input)
			if _, err := svc.CreatePlan(context.Background(), therapistID, input); !errors.Is(err, ErrPlanValidation) {
				t.Errorf("got %v, want ErrPlanValidation", err)
			}
		})
	}
}

func TestUpdatePlanEnforcesOwnership(t *testing.T) {
	repo := newMockPlanRepo()
	svc := NewPlanService(repo)
	owner := primitive.NewObjectID()

	plan, err := svc.CreatePlan(context.Background(), owner, planInputFixture())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	stranger := primitive.NewObjectID()
	if _, err := svc.UpdatePlan(context.Background(), stranger, plan.ID, planInputFixture()); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("got %v, want ErrPlanAccessDenied", err)
	}

	input := planInputFixture()
	input.Name = "CBT for Anxiety v2"
	updated, err := svc.UpdatePlan(context.Background(), owner, plan.ID, input)
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if updated.Name != "CBT for Anxiety v2" {
		t.Errorf("name = %q after update", updated.Name)
	}
}

func TestDeletePlanBlockedWhileAssigned(t *testing.T) {
	repo := newMockPlanRepo()
	svc := NewPlanService(repo)
	owner := primitive.NewObjectID()

	plan, err := svc.CreatePlan(context.Background(), owner, planInputFixture())
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	repo.plans[plan.ID].AssignedClients = 3
	if err := svc.DeletePlan(context.Background(), owner, plan.ID); !errors.Is(err, ErrPlanHasAssignments) {
		t.Fatalf("got %v, want ErrPlanHasAssignments", err)
	}

	repo.plans[plan.ID].AssignedClients = 0
	if err := svc.DeletePlan(context.Background(), owner, plan.ID); err != nil {
		t.Fatalf("delete with no assignments: %v", err)
	}
	if _, err := svc.GetPlanByID(context.Background(), plan.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("plan should be gone, got %v", err)
	}
}

func TestClonePlanProducesFreshDraft(t *testing.T) {
	repo := newMockPlanRepo()
	svc := NewPlanService(repo)
	owner := primitive.NewObjectID()

	input := planInputFixture()
	input.Status = domain.PlanStatusActive
	source, err := svc.CreatePlan(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	repo.plans[source.ID].AssignedClients = 5

	clone, err := svc.ClonePlan(context.Background(), owner, source.ID)
	if err != nil {
		t.Fatalf("ClonePlan: %v", err)
	}

	if clone.ID == source.ID {
		t.Error("clone must get its own identity")
	}
	if clone.Name != source.Name+" (Copy)" {
		t.Errorf("clone name = %q", clone.Name)
	}
	if clone.Status != domain.PlanStatusDraft {
		t.Errorf("clone status = %q, want draft", clone.Status)
	}
	if clone.AssignedClients != 0 {
		t.Errorf("clone assigned clients = %d, want 0", clone.AssignedClients)
	}
	if len(clone.Objectives) != len(source.Objectives) {
		t.Errorf("clone should carry the objective template")
	}
}

func TestArchivePlan(t *testing.T) {
	repo := newMockPlanRepo()
	svc := NewPlanService(repo)
	owner := primitive.NewObjectID()

	input := planInputFixture()
	input.Status = domain.PlanStatusActive
	plan, err := svc.CreatePlan(context.Background(), owner, input)
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	repo.plans[plan.ID].AssignedClients = 2
	if _, err := svc.ArchivePlan(context.Background(), owner, plan.ID); !errors.Is(err, ErrPlanHasAssignments) {
		t.Fatalf("got %v, want ErrPlanHasAssignments while clients hold the plan", err)
	}

	repo.plans[plan.ID].AssignedClients = 0
	archived, err := svc.ArchivePlan(context.Background(), owner, plan.ID)
	if err != nil {
		t.Fatalf("ArchivePlan: %v", err)
	}
	if archived.Status != domain.PlanStatusArchived {
		t.Errorf("status = %q, want archived", archived.Status)
	}
}
