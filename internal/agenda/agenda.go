// Package agenda turns a care plan into the per-day view shown by the CLI,
// the HTTP API and the calendar page.
package agenda

import (
	"time"

	"careplan/internal/model"
	"careplan/internal/plan"
	"careplan/internal/schedule"
)

const defaultDays = 7

// Options selects the window around the reference day.
type Options struct {
	// Days is the number of days shown from the reference day on.
	Days int
	// Backfill is the number of past days shown before the reference day.
	Backfill int
	// Extra items, e.g. imported from a calendar feed, are shown alongside
	// the plan's occurrences.
	Extra []model.ScheduledItem
	// Completed marks schedule ids done in addition to the plan's
	// activity log.
	Completed map[string]bool
}

// Entry is a scheduled item with its due-status label.
type Entry struct {
	model.ScheduledItem
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

// Day is one calendar day of the agenda. Items may be empty.
type Day struct {
	Key     schedule.DayKey `json:"key"`
	Date    time.Time       `json:"date"`
	Label   string          `json:"label"`
	Weekday string          `json:"weekday"`
	Items   []Entry         `json:"items"`
}

// Agenda is the full view for one reference instant.
type Agenda struct {
	Patient     string                    `json:"patient,omitempty"`
	Greeting    string                    `json:"greeting"`
	Reference   time.Time                 `json:"reference"`
	RangeStart  time.Time                 `json:"range_start"`
	RangeEnd    time.Time                 `json:"range_end"`
	WeekStart   string                    `json:"week_start"`
	Days        []Day                     `json:"days"`
	Assessments []plan.AssessmentSchedule `json:"assessments"`

	// PlanLoadedAt is when the plan file was last read, when known.
	PlanLoadedAt time.Time `json:"plan_loaded_at,omitzero"`
}

// Build expands p around ref. A nil plan yields an agenda with empty days.
func Build(cal schedule.Calendar, p *plan.Plan, ref time.Time, opts Options) Agenda {
	if opts.Days <= 0 {
		opts.Days = defaultDays
	}
	if opts.Backfill < 0 {
		opts.Backfill = 0
	}

	today := cal.StartOfDay(ref)
	first := today.AddDate(0, 0, -opts.Backfill)
	last := today.AddDate(0, 0, opts.Days-1)

	var items []model.ScheduledItem
	a := Agenda{
		Greeting:    schedule.GreetingFor(ref),
		Reference:   ref,
		RangeStart:  first,
		RangeEnd:    last,
		WeekStart:   cal.WeekStart.String(),
		Assessments: []plan.AssessmentSchedule{},
	}
	if p != nil {
		a.Patient = p.Patient.Name
		a.Assessments = p.AssessmentSchedules(cal)
		items = p.Occurrences(cal, first, last)
	}
	items = append(items, opts.Extra...)

	groups := cal.GroupByDay(items)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := schedule.DayKeyOf(d)
		day := Day{
			Key:     key,
			Date:    d,
			Label:   cal.RelativeDay(d, ref),
			Weekday: d.Weekday().String(),
			Items:   []Entry{},
		}
		for _, item := range cal.SortForDisplay(groups[key]) {
			day.Items = append(day.Items, Entry{
				ScheduledItem: item,
				Status:        cal.DescribeDueStatus(item, ref),
				Completed:     opts.Completed[item.ScheduleID] || (p != nil && p.Completed(item.ScheduleID)),
			})
		}
		a.Days = append(a.Days, day)
	}
	return a
}

// Items returns every distinct item in the agenda, in day order. Week
// items listed on several days are returned once.
func (a Agenda) Items() []model.ScheduledItem {
	seen := make(map[string]bool)
	var out []model.ScheduledItem
	for _, d := range a.Days {
		for _, e := range d.Items {
			if seen[e.ScheduleID] {
				continue
			}
			seen[e.ScheduleID] = true
			out = append(out, e.ScheduledItem)
		}
	}
	return out
}
