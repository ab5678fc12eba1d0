// Package schedule turns a plan's abstract cadence into concrete calendar
// dates, distributing sessions across each week and skipping weekends.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"serenity/practice-app/internal/domain"
)

// --- Error Definitions ---
var (
	ErrInvalidCadence = errors.New("sessions per week must be between 1 and 7")
	ErrInvalidInput   = errors.New("invalid schedule input")
)

const isoDate = "2006-01-02"

// Params describes one schedule generation request.
type Params struct {
	StartDate       time.Time
	SessionsPerWeek int
	TotalSessions   int
	PreferredTime   string // "HH:mm"
	DurationMinutes int
}

// Generator produces session schedules. It is pure: it holds no state and
// persists nothing.
type Generator interface {
	Generate(p Params) ([]domain.ScheduledSession, error)
}

type generator struct{}

// NewGenerator creates a schedule generator.
func NewGenerator() Generator {
	return generator{}
}

// Generate emits exactly p.TotalSessions sessions, week by week from the
// start date. The i-th session within a week sits floor((7/perWeek)*i) days
// after that week's base date; a Sunday shifts forward to Monday, a Saturday
// shifts two days to Monday. The next week's base advances exactly 7 days
// from the unshifted base, so weekend shifts never carry into the following
// week's arithmetic. The Week field reflects the scheduling week, not the
// shifted calendar week.
func (generator) Generate(p Params) ([]domain.ScheduledSession, error) {
	if p.SessionsPerWeek < 1 || p.SessionsPerWeek > 7 {
		return nil, ErrInvalidCadence
	}
	if p.TotalSessions < 0 {
		return nil, fmt.Errorf("%w: total sessions must not be negative", ErrInvalidInput)
	}
	if p.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if _, err := time.Parse("15:04", p.PreferredTime); err != nil {
		return nil, fmt.Errorf("%w: preferred time must be HH:mm", ErrInvalidInput)
	}
	if p.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	sessions := make([]domain.ScheduledSession, 0, p.TotalSessions)
	base := time.Date(p.StartDate.Year(), p.StartDate.Month(), p.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	count := 0

	for count < p.TotalSessions {
		for i := 0; i < p.SessionsPerWeek && count < p.TotalSessions; i++ {
			date := base.AddDate(0, 0, (7*i)/p.SessionsPerWeek)
			switch date.Weekday() {
			case time.Sunday:
				date = date.AddDate(0, 0, 1)
			case time.Saturday:
				date = date.AddDate(0, 0, 2)
			}

			sessions = append(sessions, domain.ScheduledSession{
				ID:              count + 1,
				Date:            date.Format(isoDate),
				Time:            p.PreferredTime,
				DurationMinutes: p.DurationMinutes,
				Week:            count/p.SessionsPerWeek + 1,
				Status:          domain.SessionScheduled,
			})
			count++
		}
		base = base.AddDate(0, 0, 7)
	}

	return sessions, nil
}
