// Package schedule derives due-status labels, recurring occurrences and
// per-day groupings from care-plan recurrence rules.
//
// Every operation is a pure function of its arguments and an explicit
// reference date. Nothing reads the wall clock and nothing is cached, so a
// Calendar may be shared freely between goroutines.
package schedule

import "time"

const (
	// DefaultDateLayout renders absolute dates as MM/dd/yyyy.
	DefaultDateLayout = "01/02/2006"
	// DefaultClockLayout renders clock times as h:mm am/pm.
	DefaultClockLayout = "3:04 pm"
)

// Calendar holds the week start and display layouts shared by matching and
// formatting. Changing WeekStart changes the meaning of every week-scoped
// item, so callers should build one Calendar and pass it everywhere.
type Calendar struct {
	WeekStart   time.Weekday
	DateLayout  string
	ClockLayout string
}

// DefaultCalendar starts weeks on Monday.
func DefaultCalendar() Calendar {
	return Calendar{
		WeekStart:   time.Monday,
		DateLayout:  DefaultDateLayout,
		ClockLayout: DefaultClockLayout,
	}
}

// civilDays numbers the civil day of t (in t's own location) since the epoch.
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func (c Calendar) weekOffset(t time.Time) int {
	return (int(t.Weekday()) - int(c.WeekStart) + 7) % 7
}

// StartOfDay returns midnight of t's civil day in t's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of t's week.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, -c.weekOffset(t))
}

func (c Calendar) IsSameDay(a, b time.Time) bool {
	return c.DayDifference(a, b) == 0
}

func (c Calendar) IsSameWeek(a, b time.Time) bool {
	return c.WeekDifference(a, b) == 0
}

// DayDifference counts civil days from b to a. Two instants on the same
// civil day differ by zero regardless of their clock times.
func (c Calendar) DayDifference(a, b time.Time) int {
	return civilDays(a) - civilDays(b)
}

// WeekDifference counts week boundaries crossed going from b to a.
func (c Calendar) WeekDifference(a, b time.Time) int {
	wa := civilDays(a) - c.weekOffset(a)
	wb := civilDays(b) - c.weekOffset(b)
	return (wa - wb) / 7
}
