package progress

import (
	"testing"

	"serenity/practice-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testPlan() *domain.TreatmentPlan {
	return &domain.TreatmentPlan{
		ID:              primitive.NewObjectID(),
		TherapistID:     primitive.NewObjectID(),
		Name:            "Anxiety Management",
		Type:            "anxiety",
		Status:          domain.PlanStatusActive,
		DurationWeeks:   2,
		SessionsPerWeek: 1,
		Objectives:      []string{"Identify triggers", "Practice breathing"},
		Homework:        []string{"Daily journal"},
	}
}

func newTestTracker(t *testing.T, plan *domain.TreatmentPlan) *Tracker {
	t.Helper()
	record := NewRecord(plan, primitive.NewObjectID(), primitive.NewObjectID())
	return NewTracker(record)
}

func TestNewRecordSeedsFromPlanTemplates(t *testing.T) {
	plan := testPlan()
	record := NewRecord(plan, primitive.NewObjectID(), primitive.NewObjectID())

	if len(record.Objectives) != 2 || len(record.Sessions) != 2 || len(record.Homework) != 1 {
		t.Fatalf("unexpected counts: %d objectives, %d sessions, %d homework",
			len(record.Objectives), len(record.Sessions), len(record.Homework))
	}
	if record.Objectives[0].ID != "obj_0" || record.Sessions[1].ID != "session_1" || record.Homework[0].ID != "hw_0" {
		t.Errorf("unexpected ids: %s %s %s", record.Objectives[0].ID, record.Sessions[1].ID, record.Homework[0].ID)
	}
	if record.Sessions[0].Week != 1 || record.Sessions[1].Week != 2 {
		t.Errorf("expected weeks 1 and 2, got %d and %d", record.Sessions[0].Week, record.Sessions[1].Week)
	}
}

func TestNewRecordHonorsTotalSessionsOverride(t *testing.T) {
	plan := testPlan()
	plan.TotalSessions = 5
	record := NewRecord(plan, primitive.NewObjectID(), primitive.NewObjectID())
	if len(record.Sessions) != 5 {
		t.Fatalf("expected 5 sessions from override, got %d", len(record.Sessions))
	}
}

func TestToggleObjectiveRoundTrip(t *testing.T) {
	tr := newTestTracker(t, testPlan())
	tr.SetObjectiveProgress("obj_0", 40)

	tr.ToggleObjective("obj_0")
	obj := tr.Record().Objectives[0]
	if !obj.Completed || obj.CompletedDate == nil {
		t.Fatalf("expected completed with date after toggle, got %+v", obj)
	}

	tr.ToggleObjective("obj_0")
	obj = tr.Record().Objectives[0]
	if obj.Completed || obj.CompletedDate != nil {
		t.Fatalf("expected pending with nil date after second toggle, got %+v", obj)
	}
	if obj.Progress != 40 {
		t.Errorf("progress not retained across round-trip: got %d", obj.Progress)
	}
}

func TestSetObjectiveProgressClampsAndIgnoresCompleted(t *testing.T) {
	tr := newTestTracker(t, testPlan())

	tr.SetObjectiveProgress("obj_0", 150)
	if got := tr.Record().Objectives[0].Progress; got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}
	tr.SetObjectiveProgress("obj_0", -5)
	if got := tr.Record().Objectives[0].Progress; got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}

	tr.ToggleObjective("obj_1")
	tr.SetObjectiveProgress("obj_1", 30)
	if got := tr.Record().Objectives[1].Progress; got != 0 {
		t.Errorf("progress should be ignored once completed, got %d", got)
	}
}

func TestSessionAttendanceDrivesCompletionAndRating(t *testing.T) {
	tr := newTestTracker(t, testPlan())

	// Rating before attendance is recorded: no-op.
	tr.SetSessionRating("session_0", 5)
	if got := tr.Record().Sessions[0].Rating; got != 0 {
		t.Fatalf("rating accepted without attendance: %d", got)
	}

	tr.SetSessionAttendance("session_0", domain.AttendanceAttended)
	if !tr.Record().Sessions[0].Completed() {
		t.Fatal("attended session should count as completed")
	}
	tr.SetSessionRating("session_0", 4)
	if got := tr.Record().Sessions[0].Rating; got != 4 {
		t.Fatalf("expected rating 4, got %d", got)
	}

	// Out-of-range ratings are ignored.
	tr.SetSessionRating("session_0", 6)
	if got := tr.Record().Sessions[0].Rating; got != 4 {
		t.Fatalf("out-of-range rating applied: %d", got)
	}

	// Any non-attended value clears the prior rating and completion.
	tr.SetSessionAttendance("session_0", domain.AttendanceMissed)
	sess := tr.Record().Sessions[0]
	if sess.Completed() || sess.Rating != 0 || sess.CompletedDate != nil {
		t.Fatalf("missed session should clear rating and completion, got %+v", sess)
	}
}

func TestHomeworkQualityOnlyOnceCompleted(t *testing.T) {
	tr := newTestTracker(t, testPlan())

	tr.SetHomeworkQuality("hw_0", domain.QualityGood)
	if got := tr.Record().Homework[0].Quality; got != domain.QualityUnset {
		t.Fatalf("quality accepted before completion: %s", got)
	}

	tr.ToggleHomework("hw_0")
	tr.SetHomeworkQuality("hw_0", domain.QualityExcellent)
	if got := tr.Record().Homework[0].Quality; got != domain.QualityExcellent {
		t.Fatalf("expected excellent, got %s", got)
	}

	tr.ToggleHomework("hw_0")
	hw := tr.Record().Homework[0]
	if hw.Completed || hw.Quality != domain.QualityUnset || hw.CompletedDate != nil {
		t.Fatalf("un-completing should clear quality and date, got %+v", hw)
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	tr := newTestTracker(t, testPlan())
	before := tr.Report()

	tr.ToggleObjective("obj_99")
	tr.SetObjectiveProgress("nope", 50)
	tr.SetSessionAttendance("session_99", domain.AttendanceAttended)
	tr.SetSessionRating("session_99", 3)
	tr.ToggleHomework("hw_99")
	tr.SetHomeworkQuality("hw_99", domain.QualityPoor)

	if after := tr.Report(); after != before {
		t.Fatalf("unknown ids mutated state: before %+v, after %+v", before, after)
	}
}

func TestNotesAreReverseChronologicalAndOutsideAggregation(t *testing.T) {
	tr := newTestTracker(t, testPlan())
	before := tr.Report().OverallProgress

	tr.AddNote("first session went well")
	tr.AddNote("  ") // blank, ignored
	tr.AddNote("introduced breathing exercise")

	notes := tr.Record().Notes
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Text != "introduced breathing exercise" {
		t.Errorf("newest note should come first, got %q", notes[0].Text)
	}
	if notes[0].ID == "" || notes[0].Date.IsZero() {
		t.Errorf("note missing id or timestamp: %+v", notes[0])
	}
	if got := tr.Report().OverallProgress; got != before {
		t.Errorf("notes changed overall progress: %d -> %d", before, got)
	}
}

func TestOverallProgressAggregation(t *testing.T) {
	// Empty record: 0, not a division error.
	empty := NewTracker(&domain.ProgressRecord{})
	if got := empty.Report().OverallProgress; got != 0 {
		t.Fatalf("empty record: expected 0, got %d", got)
	}

	// 2 objectives + 1 session + 1 homework = 4 items; complete 2 -> 50%.
	plan := testPlan()
	plan.DurationWeeks = 1
	tr := newTestTracker(t, plan)
	tr.ToggleObjective("obj_0")
	tr.SetSessionAttendance("session_0", domain.AttendanceAttended)

	report := tr.Report()
	if report.OverallProgress != 50 {
		t.Fatalf("expected 50%%, got %d%%", report.OverallProgress)
	}
	if report.CompletedObjectives != 1 || report.TotalObjectives != 2 {
		t.Errorf("objective counts wrong: %d/%d", report.CompletedObjectives, report.TotalObjectives)
	}
	if report.CompletedSessions != 1 || report.TotalSessions != 1 {
		t.Errorf("session counts wrong: %d/%d", report.CompletedSessions, report.TotalSessions)
	}
	if report.CompletedHomework != 0 || report.TotalHomework != 1 {
		t.Errorf("homework counts wrong: %d/%d", report.CompletedHomework, report.TotalHomework)
	}
}

func TestAverageSessionRatingIgnoresUnratedAndNonAttended(t *testing.T) {
	plan := testPlan()
	plan.DurationWeeks = 4 // 4 weekly sessions
	tr := newTestTracker(t, plan)

	if got := tr.Report().AverageSessionRating; got != 0 {
		t.Fatalf("no qualifying sessions: expected 0, got %v", got)
	}

	tr.SetSessionAttendance("session_0", domain.AttendanceAttended)
	tr.SetSessionRating("session_0", 4)
	tr.SetSessionAttendance("session_1", domain.AttendanceAttended)
	tr.SetSessionRating("session_1", 5)
	tr.SetSessionAttendance("session_2", domain.AttendanceAttended) // attended, unrated
	tr.SetSessionAttendance("session_3", domain.AttendanceMissed)   // not attended

	if got := tr.Report().AverageSessionRating; got != 4.5 {
		t.Fatalf("expected 4.5, got %v", got)
	}
}
