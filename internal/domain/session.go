// internal/domain/session.go
package domain

// SessionStatus type for a scheduled session's lifecycle
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionAttended  SessionStatus = "attended"
	SessionMissed    SessionStatus = "missed"
	SessionCancelled SessionStatus = "cancelled"
)

// ScheduledSession is one concrete calendar slot produced by the schedule
// generator. Date is an ISO-8601 calendar date and Time is "HH:mm"; that is
// the shape consumed by calendar/booking UIs, so it is stored as-is.
type ScheduledSession struct {
	ID              int           `bson:"id" json:"id"` // ordinal within the schedule, 1-based
	Date            string        `bson:"date" json:"date"`
	Time            string        `bson:"time" json:"time"`
	DurationMinutes int           `bson:"durationMinutes" json:"durationMinutes"`
	Week            int           `bson:"week" json:"week"` // scheduling week, not the shifted calendar week
	Status          SessionStatus `bson:"status" json:"status"`
}
