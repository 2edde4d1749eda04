// Package ics converts scheduled items to and from iCalendar.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"careplan/internal/model"
	"careplan/internal/schedule"
)

const defaultExactDuration = 30 * time.Minute

// dueTypeProperty round-trips the due type through calendar clients.
const dueTypeProperty = ical.ComponentProperty("X-CAREPLAN-DUE-TYPE")

// ExportOptions controls how items are rendered as events.
type ExportOptions struct {
	// Calendar decides where week-scoped events start. The zero value
	// means schedule.DefaultCalendar().
	Calendar schedule.Calendar
	// Name is written as X-WR-CALNAME when set.
	Name string
	// ExactDuration is the length of exact-time events. Zero means 30m.
	ExactDuration time.Duration
	// Stamp is written as DTSTAMP. Zero means now.
	Stamp time.Time
}

// Export renders items as a VCALENDAR. Day items become all-day events,
// week items all-day events covering their whole week, chunk items timed
// events covering their part of the day and exact items short timed events.
func Export(items []model.ScheduledItem, opts ExportOptions) string {
	if opts.Calendar == (schedule.Calendar{}) {
		opts.Calendar = schedule.DefaultCalendar()
	}
	if opts.ExactDuration <= 0 {
		opts.ExactDuration = defaultExactDuration
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendarFor("careplan")
	cal.SetMethod(ical.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, item := range items {
		ev := cal.AddEvent(item.ScheduleID + "@careplan")
		ev.SetDtStampTime(opts.Stamp)
		ev.SetSummary(item.Title)
		ev.SetProperty(ical.ComponentPropertyCategories, string(item.Kind))
		ev.SetProperty(dueTypeProperty, string(item.DueType))

		switch item.DueType {
		case model.DueWeek:
			start := opts.Calendar.StartOfWeek(item.DueDate)
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(start.AddDate(0, 0, 7))
		case model.DueDay:
			start := opts.Calendar.StartOfDay(item.DueDate)
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		case model.DueChunkOfDay:
			start, end := chunkWindow(item.DueDate)
			ev.SetStartAt(start)
			ev.SetEndAt(end)
		default:
			ev.SetStartAt(item.DueDate)
			ev.SetEndAt(item.DueDate.Add(opts.ExactDuration))
		}

		if !item.Reminder.IsZero() {
			alarm := ev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(trigger(item.Reminder.Sub(item.DueDate)))
			alarm.SetProperty(ical.ComponentPropertyDescription, item.Title)
		}
	}

	return cal.Serialize()
}

// chunkWindow returns the six-hour part of the day containing t.
func chunkWindow(t time.Time) (time.Time, time.Time) {
	h := int(schedule.BucketOf(t)) * 6
	start := time.Date(t.Year(), t.Month(), t.Day(), h, 0, 0, 0, t.Location())
	return start, time.Date(t.Year(), t.Month(), t.Day(), h+6, 0, 0, 0, t.Location())
}

// trigger renders an alarm offset relative to DTSTART, e.g. "-PT30M".
func trigger(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%sPT%dM", sign, int(d/time.Minute))
}
