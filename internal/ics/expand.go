package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "careplan/internal/log"
	"careplan/internal/model"
	"careplan/internal/schedule"
)

const defaultMaxOccurrencesPerEvent = 500

// ImportOptions bounds the expansion of imported events.
type ImportOptions struct {
	// Location receives every imported due date. Nil means UTC.
	Location *time.Location

	// RangeStart and RangeEnd bound recurring events, inclusive by civil
	// day. Non-recurring events are imported regardless of the range, and
	// a zero RangeEnd imports only the first instance of a recurring one.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps RRULE expansion. Zero means 500.
	MaxOccurrencesPerEvent int
}

// ParseItems parses body and turns each event occurrence into an external
// scheduled item. Without X-CAREPLAN-DUE-TYPE, all-day events become
// day-scoped and timed events exact.
func ParseItems(src Source, body []byte, opts ImportOptions) ([]model.ScheduledItem, error) {
	events, err := ParseEvents(src, body)
	if err != nil {
		return nil, err
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxOccurrencesPerEvent <= 0 {
		opts.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	items := make([]model.ScheduledItem, 0, len(events))
	for _, ev := range events {
		for _, start := range occurrences(ev, opts) {
			items = append(items, toItem(src, ev, start, opts.Location))
		}
	}
	return items, nil
}

// occurrences returns the start of every instance of ev to import.
func occurrences(ev Event, opts ImportOptions) []time.Time {
	if ev.RawRRule == "" || opts.RangeEnd.IsZero() {
		return []time.Time{ev.Start}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return []time.Time{ev.Start}
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := opts.Location
	begin := opts.RangeStart.In(loc)
	end := opts.RangeEnd.In(loc)
	from := time.Date(begin.Year(), begin.Month(), begin.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)

	starts := set.Between(from, to, true)
	if len(starts) > opts.MaxOccurrencesPerEvent {
		appLog.Warn("ics: occurrences truncated", "uid", ev.UID, "cap", opts.MaxOccurrencesPerEvent)
		starts = starts[:opts.MaxOccurrencesPerEvent]
	}
	return starts
}

func toItem(src Source, ev Event, start time.Time, loc *time.Location) model.ScheduledItem {
	dueType := model.DueExact
	if ev.AllDay {
		dueType = model.DueDay
	}
	if ev.HasDue {
		dueType = ev.DueType
	}

	var due time.Time
	if ev.AllDay {
		// All-day dates are floating; keep the calendar date as written.
		due = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	} else {
		due = start.In(loc)
	}

	return model.ScheduledItem{
		ScheduleID: schedule.ScheduleID(src.ID+"/"+ev.UID+"@"+due.Format(time.RFC3339), due),
		SourceID:   ev.UID,
		Kind:       model.KindExternal,
		Title:      ev.Summary,
		DueDate:    due,
		DueType:    dueType,
	}
}
