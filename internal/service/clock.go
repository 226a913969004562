package service

import (
	"time"

	"vapestore-pos/internal/apperror"
)

// Clock reads the current instant in the store's time zone. Calendar-day
// boundaries (today, this month, shift dates) are computed in Location.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock returns a wall clock in loc
func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	return c.Now().In(c.Location)
}

func (c Clock) startOfDay() time.Time {
	n := c.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.Location)
}

func (c Clock) startOfMonth() time.Time {
	n := c.now()
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, c.Location)
}

// Reporting windows accepted by the summary endpoints
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// periodStart maps a period name to the start of its window. An empty name means today.
func (c Clock) periodStart(period string) (time.Time, error) {
	switch period {
	case "", PeriodToday:
		return c.startOfDay(), nil
	case PeriodWeek:
		return c.now().Add(-7 * 24 * time.Hour), nil
	case PeriodMonth:
		return c.startOfMonth(), nil
	default:
		return time.Time{}, apperror.NewValidation("period must be one of today, week, month").
			WithDetail("period", period)
	}
}
