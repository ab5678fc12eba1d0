// Package progress tracks completion state of one (plan, client) pairing
// across objectives, sessions, and homework, and aggregates it into a report.
package progress

import (
	"fmt"
	"math"
	"strings"
	"time"

	"serenity/practice-app/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewRecord initializes a progress record from the plan's template lists.
// Entity ids are stable per template index so callers can address them across
// reloads.
func NewRecord(plan *domain.TreatmentPlan, clientID, assignmentID primitive.ObjectID) *domain.ProgressRecord {
	record := &domain.ProgressRecord{
		AssignmentID: assignmentID,
		PlanID:       plan.ID,
		ClientID:     clientID,
		TherapistID:  plan.TherapistID,
		Objectives:   make([]domain.ObjectiveProgress, 0, len(plan.Objectives)),
		Homework:     make([]domain.HomeworkProgress, 0, len(plan.Homework)),
	}

	for i, text := range plan.Objectives {
		record.Objectives = append(record.Objectives, domain.ObjectiveProgress{
			ID:   fmt.Sprintf("obj_%d", i),
			Text: text,
		})
	}

	total := plan.EffectiveTotalSessions()
	record.Sessions = make([]domain.SessionProgress, 0, total)
	for i := 0; i < total; i++ {
		week := 1
		if plan.SessionsPerWeek > 0 {
			week = i/plan.SessionsPerWeek + 1
		}
		record.Sessions = append(record.Sessions, domain.SessionProgress{
			ID:   fmt.Sprintf("session_%d", i),
			Week: week,
		})
	}

	for i, text := range plan.Homework {
		record.Homework = append(record.Homework, domain.HomeworkProgress{
			ID:   fmt.Sprintf("hw_%d", i),
			Text: text,
		})
	}

	return record
}

// Tracker mutates a ProgressRecord in memory. Every operation is a total
// function over the record's reachable state: an unknown id is a no-op, never
// an error. The tracker is not safe for concurrent use.
type Tracker struct {
	record *domain.ProgressRecord
	now    func() time.Time
}

// NewTracker wraps an existing record.
func NewTracker(record *domain.ProgressRecord) *Tracker {
	return &Tracker{record: record, now: time.Now}
}

// Record returns the underlying record.
func (t *Tracker) Record() *domain.ProgressRecord {
	return t.record
}

func (t *Tracker) touch() {
	t.record.UpdatedAt = t.now().UTC()
}

// ToggleObjective flips completion. Toggling twice returns the objective to
// its original state; Progress is retained either way.
func (t *Tracker) ToggleObjective(id string) {
	for i := range t.record.Objectives {
		obj := &t.record.Objectives[i]
		if obj.ID != id {
			continue
		}
		obj.Completed = !obj.Completed
		if obj.Completed {
			done := t.now().UTC()
			obj.CompletedDate = &done
		} else {
			obj.CompletedDate = nil
		}
		t.touch()
		return
	}
}

// SetObjectiveProgress records partial progress, clamped to [0,100]. It is
// only meaningful while the objective is not completed.
func (t *Tracker) SetObjectiveProgress(id string, percent int) {
	for i := range t.record.Objectives {
		obj := &t.record.Objectives[i]
		if obj.ID != id {
			continue
		}
		if obj.Completed {
			return
		}
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		obj.Progress = percent
		t.touch()
		return
	}
}

// SetSessionAttendance records attendance. Completion is derived from
// attendance == attended; any other value clears a previously set rating.
func (t *Tracker) SetSessionAttendance(id string, attendance domain.Attendance) {
	if !attendance.Valid() {
		return
	}
	for i := range t.record.Sessions {
		sess := &t.record.Sessions[i]
		if sess.ID != id {
			continue
		}
		sess.Attendance = attendance
		if attendance == domain.AttendanceAttended {
			done := t.now().UTC()
			sess.CompletedDate = &done
		} else {
			sess.Rating = 0
			sess.CompletedDate = nil
		}
		t.touch()
		return
	}
}

// SetSessionRating records a 1..5 rating; ignored unless the session's
// attendance is attended.
func (t *Tracker) SetSessionRating(id string, rating int) {
	if rating < 1 || rating > 5 {
		return
	}
	for i := range t.record.Sessions {
		sess := &t.record.Sessions[i]
		if sess.ID != id {
			continue
		}
		if sess.Attendance != domain.AttendanceAttended {
			return
		}
		sess.Rating = rating
		t.touch()
		return
	}
}

// ToggleHomework flips completion with the same idempotent semantics as
// objectives. Un-completing clears any recorded quality.
func (t *Tracker) ToggleHomework(id string) {
	for i := range t.record.Homework {
		hw := &t.record.Homework[i]
		if hw.ID != id {
			continue
		}
		hw.Completed = !hw.Completed
		if hw.Completed {
			done := t.now().UTC()
			hw.CompletedDate = &done
		} else {
			hw.Quality = domain.QualityUnset
			hw.CompletedDate = nil
		}
		t.touch()
		return
	}
}

// SetHomeworkQuality evaluates completed homework; ignored while the item is
// still pending.
func (t *Tracker) SetHomeworkQuality(id string, quality domain.HomeworkQuality) {
	if !quality.Valid() {
		return
	}
	for i := range t.record.Homework {
		hw := &t.record.Homework[i]
		if hw.ID != id {
			continue
		}
		if !hw.Completed {
			return
		}
		hw.Quality = quality
		t.touch()
		return
	}
}

// AddNote prepends a timestamped free-text entry to the reverse-chronological
// log. Blank text is ignored.
func (t *Tracker) AddNote(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	note := domain.ProgressNote{
		ID:   uuid.NewString(),
		Date: t.now().UTC(),
		Text: text,
	}
	t.record.Notes = append([]domain.ProgressNote{note}, t.record.Notes...)
	t.touch()
}

// Report computes the aggregate progress view from the current state. It is a
// pure function of the record and is never cached.
func (t *Tracker) Report() domain.ProgressReport {
	r := t.record
	report := domain.ProgressReport{
		TotalObjectives: len(r.Objectives),
		TotalSessions:   len(r.Sessions),
		TotalHomework:   len(r.Homework),
		StartDate:       r.CreatedAt,
		LastUpdate:      r.UpdatedAt,
	}

	for i := range r.Objectives {
		if r.Objectives[i].Completed {
			report.CompletedObjectives++
		}
	}
	ratingSum, rated := 0, 0
	for i := range r.Sessions {
		if r.Sessions[i].Completed() {
			report.CompletedSessions++
		}
		if r.Sessions[i].Attendance == domain.AttendanceAttended && r.Sessions[i].Rating > 0 {
			ratingSum += r.Sessions[i].Rating
			rated++
		}
	}
	for i := range r.Homework {
		if r.Homework[i].Completed {
			report.CompletedHomework++
		}
	}

	completed := report.CompletedObjectives + report.CompletedSessions + report.CompletedHomework
	total := report.TotalObjectives + report.TotalSessions + report.TotalHomework
	if total > 0 {
		report.OverallProgress = int(math.Round(100 * float64(completed) / float64(total)))
	}
	if rated > 0 {
		avg := float64(ratingSum) / float64(rated)
		report.AverageSessionRating = math.Round(avg*10) / 10
	}
	return report
}
