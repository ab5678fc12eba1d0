// internal/domain/progress.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance type for a tracked session. The zero value means "not recorded".
type Attendance string

const (
	AttendanceUnset     Attendance = ""
	AttendanceAttended  Attendance = "attended"
	AttendanceMissed    Attendance = "missed"
	AttendanceCancelled Attendance = "cancelled"
)

// Valid reports whether a is one of the recordable attendance values.
func (a Attendance) Valid() bool {
	switch a {
	case AttendanceUnset, AttendanceAttended, AttendanceMissed, AttendanceCancelled:
		return true
	}
	return false
}

// HomeworkQuality type for evaluating completed homework.
type HomeworkQuality string

const (
	QualityUnset     HomeworkQuality = ""
	QualityExcellent HomeworkQuality = "excellent"
	QualityGood      HomeworkQuality = "good"
	QualityFair      HomeworkQuality = "fair"
	QualityPoor      HomeworkQuality = "poor"
)

// Valid reports whether q is one of the recordable quality values.
func (q HomeworkQuality) Valid() bool {
	switch q {
	case QualityUnset, QualityExcellent, QualityGood, QualityFair, QualityPoor:
		return true
	}
	return false
}

// ObjectiveProgress tracks one plan objective for one client.
type ObjectiveProgress struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	Completed bool   `bson:"completed" json:"completed"`
	// Progress (0..100) is retained but ignored for aggregation once completed.
	Progress      int        `bson:"progress" json:"progress"`
	CompletedDate *time.Time `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
}

// SessionProgress tracks attendance of one scheduled session. Completion is
// derived from attendance, never stored independently.
type SessionProgress struct {
	ID         string     `bson:"id" json:"id"`
	Week       int        `bson:"week" json:"week"`
	Attendance Attendance `bson:"attendance,omitempty" json:"attendance,omitempty"`
	// Rating (1..5) is only meaningful while Attendance == attended.
	Rating        int        `bson:"rating,omitempty" json:"rating,omitempty"`
	CompletedDate *time.Time `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
}

// Completed reports whether the session counts toward progress.
func (s *SessionProgress) Completed() bool {
	return s.Attendance == AttendanceAttended
}

// HomeworkProgress tracks one homework item for one client.
type HomeworkProgress struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	Completed bool   `bson:"completed" json:"completed"`
	// Quality is only meaningful once Completed is true.
	Quality       HomeworkQuality `bson:"quality,omitempty" json:"quality,omitempty"`
	CompletedDate *time.Time      `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
}

// ProgressNote is a free-text, timestamped entry. Notes never participate
// in progress aggregation.
type ProgressNote struct {
	ID   string    `bson:"id" json:"id"`
	Date time.Time `bson:"date" json:"date"`
	Text string    `bson:"text" json:"text"`
}

// ProgressRecord is the tracked state of one (plan, client) pairing,
// initialized once from the plan's template lists. Notes are kept newest
// first.
type ProgressRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	TherapistID  primitive.ObjectID `bson:"therapistId" json:"therapistId"`

	Objectives []ObjectiveProgress `bson:"objectives" json:"objectives"`
	Sessions   []SessionProgress   `bson:"sessions" json:"sessions"`
	Homework   []HomeworkProgress  `bson:"homework" json:"homework"`
	Notes      []ProgressNote      `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProgressReport is derived from a ProgressRecord on demand; it is never
// stored or mutated directly. It is the only artifact exported for external
// rendering/printing.
type ProgressReport struct {
	OverallProgress      int       `json:"overallProgress"`
	CompletedObjectives  int       `json:"completedObjectives"`
	TotalObjectives      int       `json:"totalObjectives"`
	CompletedSessions    int       `json:"completedSessions"`
	TotalSessions        int       `json:"totalSessions"`
	CompletedHomework    int       `json:"completedHomework"`
	TotalHomework        int       `json:"totalHomework"`
	AverageSessionRating float64   `json:"averageSessionRating"`
	StartDate            time.Time `json:"startDate"`
	LastUpdate           time.Time `json:"lastUpdate"`
}
