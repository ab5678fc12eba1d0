package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"serenity/practice-app/internal/domain"
	"serenity/practice-app/internal/repository"
	"serenity/practice-app/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type mockAssignmentRepo struct {
	created []*domain.PlanAssignment
	// failFor rejects AssignPlan for specific client IDs.
	failFor map[primitive.ObjectID]error
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{failFor: make(map[primitive.ObjectID]error)}
}

func (m *mockAssignmentRepo) AssignPlan(ctx context.Context, assignment *domain.PlanAssignment) (primitive.ObjectID, error) {
	if err, ok := m.failFor[assignment.ClientID]; ok {
		return primitive.NilObjectID, err
	}
	assignment.ID = primitive.NewObjectID()
	m.created = append(m.created, assignment)
	return assignment.ID, nil
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanAssignment, error) {
	for _, a := range m.created {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAssignmentRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	var out []domain.PlanAssignment
	for _, a := range m.created {
		if a.PlanID == planID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.PlanAssignment, error) {
	var out []domain.PlanAssignment
	for _, a := range m.created {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *domain.PlanAssignment) error {
	return nil
}

type mockPlanRepo struct {
	plans      map[primitive.ObjectID]*domain.TreatmentPlan
	increments map[primitive.ObjectID]int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{
		plans:      make(map[primitive.ObjectID]*domain.TreatmentPlan),
		increments: make(map[primitive.ObjectID]int),
	}
}

func (m *mockPlanRepo) Create(ctx context.Context, plan *domain.TreatmentPlan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	m.plans[plan.ID] = plan
	return plan.ID, nil
}

func (m *mockPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TreatmentPlan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

func (m *mockPlanRepo) GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.TreatmentPlan, error) {
	var out []domain.TreatmentPlan
	for _, p := range m.plans {
		if p.TherapistID == therapistID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPlanRepo) Update(ctx context.Context, plan *domain.TreatmentPlan) error {
	if _, ok := m.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	m.plans[plan.ID] = plan
	return nil
}

func (m *mockPlanRepo) Delete(ctx context.Context, id, therapistID primitive.ObjectID) error {
	plan, ok := m.plans[id]
	if !ok || plan.TherapistID != therapistID {
		return repository.ErrNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *mockPlanRepo) IncrementAssignedClients(ctx context.Context, id primitive.ObjectID, delta int) error {
	if plan, ok := m.plans[id]; ok {
		plan.AssignedClients += delta
	}
	m.increments[id] += delta
	return nil
}

type mockClientRepo struct {
	clients  map[primitive.ObjectID]*domain.Client
	attached map[primitive.ObjectID][]primitive.ObjectID // clientID -> planIDs persisted
}

func newMockClientRepo() *mockClientRepo {
	return &mockClientRepo{
		clients:  make(map[primitive.ObjectID]*domain.Client),
		attached: make(map[primitive.ObjectID][]primitive.ObjectID),
	}
}

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	client.ID = primitive.NewObjectID()
	m.clients[client.ID] = client
	return client.ID, nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *client
	return &cp, nil
}

func (m *mockClientRepo) GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range m.clients {
		if c.TherapistID == therapistID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockClientRepo) AddAssignedPlan(ctx context.Context, clientID primitive.ObjectID, plan *domain.TreatmentPlan) error {
	if _, ok := m.clients[clientID]; !ok {
		return repository.ErrNotFound
	}
	m.attached[clientID] = append(m.attached[clientID], plan.ID)
	return nil
}

// --- Helpers ---

func testPlan(therapistID primitive.ObjectID) *domain.TreatmentPlan {
	return &domain.TreatmentPlan{
		ID:              primitive.NewObjectID(),
		TherapistID:     therapistID,
		Name:            "CBT for Anxiety",
		Type:            "anxiety",
		Status:          domain.PlanStatusActive,
		DurationWeeks:   4,
		SessionsPerWeek: 2,
	}
}

func testClient(therapistID primitive.ObjectID, name string) *domain.Client {
	return &domain.Client{
		ID:          primitive.NewObjectID(),
		TherapistID: therapistID,
		Name:        name,
	}
}

func newTestEngine(assignmentRepo repository.AssignmentRepository) BulkAssignmentService {
	return NewBulkAssignmentService(newMockPlanRepo(), newMockClientRepo(), assignmentRepo, schedule.NewGenerator())
}

// --- Tests ---

func TestAssignMixedBatch(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)

	alice := testClient(therapistID, "Alice")
	alice.AddAssignedPlan(plan.ID) // already has this exact plan

	bob := testClient(therapistID, "Bob")
	bob.ActivePlans = []domain.ActivePlanRef{{
		PlanID: primitive.NewObjectID(),
		Name:   "Panic Management",
		Type:   "anxiety",
		Status: domain.PlanStatusActive,
	}}

	repo := newMockAssignmentRepo()
	svc := newTestEngine(repo)

	result, err := svc.Assign(context.Background(), plan, []*domain.Client{alice, bob}, domain.AssignmentSettings{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %+v", len(result.Warnings), result.Warnings)
	}
	if result.Warnings[0].Reason != domain.ReasonAlreadyAssigned || result.Warnings[0].ClientID != alice.ID {
		t.Errorf("first warning should flag Alice as already assigned, got %+v", result.Warnings[0])
	}
	if result.Warnings[1].Reason != domain.ReasonConflictingActivePlan || result.Warnings[1].ClientID != bob.ID {
		t.Errorf("second warning should flag Bob's conflicting plan, got %+v", result.Warnings[1])
	}

	// Alice is short-circuited; Bob's conflict is advisory so his attempt
	// still runs and succeeds.
	if len(result.Successful) != 1 || result.Successful[0].ClientID != bob.ID {
		t.Fatalf("expected only Bob in successful, got %+v", result.Successful)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("expected no failures, got %+v", result.Failed)
	}

	if !bob.HasPlan(plan.ID) {
		t.Error("Bob's in-memory assigned set should include the plan")
	}
	if alice.HasPlan(plan.ID) && len(repo.created) != 1 {
		t.Errorf("only one assignment record should be persisted, got %d", len(repo.created))
	}
	if plan.AssignedClients != 1 {
		t.Errorf("plan.AssignedClients = %d, want 1", plan.AssignedClients)
	}
}

func TestAssignBucketInvariant(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)

	clients := []*domain.Client{
		testClient(therapistID, "C1"),
		testClient(therapistID, "C2"),
		testClient(therapistID, "C3"),
		testClient(therapistID, "C4"),
	}
	clients[1].AddAssignedPlan(plan.ID) // warning + skip

	repo := newMockAssignmentRepo()
	repo.failFor[clients[2].ID] = errors.New("write conflict")
	svc := newTestEngine(repo)

	result, err := svc.Assign(context.Background(), plan, clients, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	if got := len(result.Successful) + len(result.Failed); got > len(clients) {
		t.Errorf("successful+failed = %d exceeds batch size %d", got, len(clients))
	}
	if len(result.Successful) != 2 {
		t.Errorf("expected 2 successes, got %+v", result.Successful)
	}
	if len(result.Failed) != 1 || result.Failed[0].ClientID != clients[2].ID {
		t.Errorf("expected C3 to fail, got %+v", result.Failed)
	}
	if result.Failed[0].Error == "" {
		t.Error("failure entry should carry the error message")
	}
}

func TestAssignResultsFollowInputOrder(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)
	clients := []*domain.Client{
		testClient(therapistID, "First"),
		testClient(therapistID, "Second"),
		testClient(therapistID, "Third"),
	}

	svc := newTestEngine(newMockAssignmentRepo())
	result, err := svc.Assign(context.Background(), plan, clients, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	for i, want := range []string{"First", "Second", "Third"} {
		if result.Successful[i].ClientName != want {
			t.Errorf("successful[%d] = %q, want %q", i, result.Successful[i].ClientName, want)
		}
	}
}

func TestAssignNilPreconditions(t *testing.T) {
	svc := newTestEngine(newMockAssignmentRepo())

	if _, err := svc.Assign(context.Background(), nil, []*domain.Client{}, domain.AssignmentSettings{}); !errors.Is(err, ErrNilPlan) {
		t.Errorf("nil plan: got %v, want ErrNilPlan", err)
	}

	plan := testPlan(primitive.NewObjectID())
	if _, err := svc.Assign(context.Background(), plan, nil, domain.AssignmentSettings{}); !errors.Is(err, ErrNilClientBatch) {
		t.Errorf("nil clients: got %v, want ErrNilClientBatch", err)
	}

	// Empty but non-nil batch is a valid no-op.
	result, err := svc.Assign(context.Background(), plan, []*domain.Client{}, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(result.Successful)+len(result.Warnings)+len(result.Failed) != 0 {
		t.Errorf("empty batch should produce empty result, got %+v", result)
	}
}

func TestAssignRerunClassifiesPriorSuccessesAsWarnings(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)
	clients := []*domain.Client{
		testClient(therapistID, "A"),
		testClient(therapistID, "B"),
	}

	svc := newTestEngine(newMockAssignmentRepo())
	first, err := svc.Assign(context.Background(), plan, clients, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Successful) != 2 {
		t.Fatalf("first run should assign both, got %+v", first)
	}

	second, err := svc.Assign(context.Background(), plan, clients, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Successful) != 0 || len(second.Failed) != 0 {
		t.Errorf("second run should not re-assign, got %+v", second)
	}
	if len(second.Warnings) != 2 {
		t.Fatalf("second run should warn for both clients, got %+v", second.Warnings)
	}
	for _, w := range second.Warnings {
		if w.Reason != domain.ReasonAlreadyAssigned {
			t.Errorf("warning reason = %q, want %q", w.Reason, domain.ReasonAlreadyAssigned)
		}
	}
	if plan.AssignedClients != 2 {
		t.Errorf("plan.AssignedClients = %d, want 2", plan.AssignedClients)
	}
}

func TestAssignAutoScheduleAttachesSessions(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID) // 4 weeks x 2/week = 8 sessions
	client := testClient(therapistID, "Carol")

	repo := newMockAssignmentRepo()
	svc := newTestEngine(repo)

	result, err := svc.Assign(context.Background(), plan, []*domain.Client{client}, domain.AssignmentSettings{
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AutoSchedule: true,
	})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if len(result.Successful) != 1 {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted assignment, got %d", len(repo.created))
	}

	sessions := repo.created[0].Schedule
	if len(sessions) != plan.EffectiveTotalSessions() {
		t.Fatalf("schedule length = %d, want %d", len(sessions), plan.EffectiveTotalSessions())
	}
	if sessions[0].Time != "10:00" || sessions[0].DurationMinutes != 60 {
		t.Errorf("defaults not applied: %+v", sessions[0])
	}
}

func TestAssignAutoScheduleFailureLandsInFailed(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)
	plan.SessionsPerWeek = 0 // cadence the generator rejects

	good := testClient(therapistID, "Good")
	repo := newMockAssignmentRepo()
	svc := newTestEngine(repo)

	result, err := svc.Assign(context.Background(), plan, []*domain.Client{good}, domain.AssignmentSettings{
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AutoSchedule: true,
	})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].ClientID != good.ID {
		t.Fatalf("expected scheduling failure for the client, got %+v", result)
	}
	if len(repo.created) != 0 {
		t.Errorf("no assignment should be persisted after a schedule failure, got %d", len(repo.created))
	}
	if good.HasPlan(plan.ID) {
		t.Error("failed client must not gain plan membership")
	}
}

func TestAssignCommittedMutationsStandAfterLaterFailure(t *testing.T) {
	therapistID := primitive.NewObjectID()
	plan := testPlan(therapistID)
	first := testClient(therapistID, "First")
	second := testClient(therapistID, "Second")

	repo := newMockAssignmentRepo()
	repo.failFor[second.ID] = errors.New("storage unavailable")
	svc := newTestEngine(repo)

	result, err := svc.Assign(context.Background(), plan, []*domain.Client{first, second}, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}

	if len(result.Successful) != 1 || result.Successful[0].ClientID != first.ID {
		t.Fatalf("expected First to succeed, got %+v", result.Successful)
	}
	if len(result.Failed) != 1 || result.Failed[0].ClientID != second.ID {
		t.Fatalf("expected Second to fail, got %+v", result.Failed)
	}
	// No rollback: First's committed state survives Second's failure.
	if !first.HasPlan(plan.ID) {
		t.Error("First's membership should stand")
	}
	if plan.AssignedClients != 1 {
		t.Errorf("plan.AssignedClients = %d, want 1", plan.AssignedClients)
	}
}

func TestAssignByIDsPersistsSideEffects(t *testing.T) {
	therapistID := primitive.NewObjectID()

	planRepo := newMockPlanRepo()
	plan := testPlan(therapistID)
	planRepo.plans[plan.ID] = plan

	clientRepo := newMockClientRepo()
	c1 := testClient(therapistID, "C1")
	c2 := testClient(therapistID, "C2")
	clientRepo.clients[c1.ID] = c1
	clientRepo.clients[c2.ID] = c2

	assignmentRepo := newMockAssignmentRepo()
	svc := NewBulkAssignmentService(planRepo, clientRepo, assignmentRepo, schedule.NewGenerator())

	result, err := svc.AssignByIDs(context.Background(), therapistID, plan.ID, []primitive.ObjectID{c1.ID, c2.ID}, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("AssignByIDs returned error: %v", err)
	}
	if len(result.Successful) != 2 {
		t.Fatalf("expected 2 successes, got %+v", result)
	}

	for _, id := range []primitive.ObjectID{c1.ID, c2.ID} {
		if got := clientRepo.attached[id]; len(got) != 1 || got[0] != plan.ID {
			t.Errorf("client %s roster update not persisted: %v", id.Hex(), got)
		}
	}
	if planRepo.increments[plan.ID] != 2 {
		t.Errorf("assigned-client increment = %d, want 2", planRepo.increments[plan.ID])
	}
}

func TestAssignByIDsUnknownClientGoesToFailed(t *testing.T) {
	therapistID := primitive.NewObjectID()

	planRepo := newMockPlanRepo()
	plan := testPlan(therapistID)
	planRepo.plans[plan.ID] = plan

	clientRepo := newMockClientRepo()
	known := testClient(therapistID, "Known")
	clientRepo.clients[known.ID] = known
	unknown := primitive.NewObjectID()

	svc := NewBulkAssignmentService(planRepo, clientRepo, newMockAssignmentRepo(), schedule.NewGenerator())

	result, err := svc.AssignByIDs(context.Background(), therapistID, plan.ID, []primitive.ObjectID{unknown, known.ID}, domain.AssignmentSettings{})
	if err != nil {
		t.Fatalf("AssignByIDs returned error: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].ClientID != unknown {
		t.Errorf("unknown client should land in failed, got %+v", result.Failed)
	}
	if len(result.Successful) != 1 || result.Successful[0].ClientID != known.ID {
		t.Errorf("known client should still succeed, got %+v", result.Successful)
	}
}

func TestAssignByIDsRejectsForeignPlan(t *testing.T) {
	planRepo := newMockPlanRepo()
	owner := primitive.NewObjectID()
	plan := testPlan(owner)
	planRepo.plans[plan.ID] = plan

	svc := NewBulkAssignmentService(planRepo, newMockClientRepo(), newMockAssignmentRepo(), schedule.NewGenerator())

	_, err := svc.AssignByIDs(context.Background(), primitive.NewObjectID(), plan.ID, []primitive.ObjectID{}, domain.AssignmentSettings{})
	if !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("got %v, want ErrPlanAccessDenied", err)
	}
}
