package schedule

import (
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	appLog "careplan/internal/log"
	"careplan/internal/model"
)

// scheduleNamespace seeds deterministic occurrence ids.
var scheduleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("careplan:schedule"))

var rruleDays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// ScheduleID derives the id of the occurrence of sourceID on day's civil
// date. Expanding the same rule twice yields the same ids, so logs recorded
// against an occurrence keep matching it.
func ScheduleID(sourceID string, day time.Time) string {
	return uuid.NewSHA1(scheduleNamespace, []byte(sourceID+"/"+string(DayKeyOf(day)))).String()
}

// dayRange resolves [rangeStart, rangeEnd] to midnights of their civil days
// in rangeStart's location. ok is false for an inverted range.
func (c Calendar) dayRange(rangeStart, rangeEnd time.Time) (first, last time.Time, ok bool) {
	loc := rangeStart.Location()
	first = c.StartOfDay(rangeStart)
	last = c.StartOfDay(rangeEnd.In(loc))
	return first, last, !last.Before(first)
}

// dayIn moves t's civil date into loc at midnight.
func dayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func (c Calendar) weekStartDay() rrule.Weekday {
	return rruleDays[model.WeekdayOf(c.WeekStart)]
}

// ExpandActivity yields the occurrences of an activity between the civil
// days of rangeStart and rangeEnd, inclusive, each stamped with at.
//
// A non-repeating rule yields at most one occurrence, on rule.Start's day.
// A repeating rule yields one occurrence per flagged weekday, never before
// rule.Start's day. The sequence is chronological and may be ranged over
// any number of times.
func (c Calendar) ExpandActivity(rule model.ActivityRule, rangeStart, rangeEnd time.Time, at model.TimeOfDay) iter.Seq[model.ScheduledItem] {
	return func(yield func(model.ScheduledItem) bool) {
		first, last, ok := c.dayRange(rangeStart, rangeEnd)
		if !ok {
			return
		}
		loc := first.Location()

		if !rule.HasRepetition {
			if rule.Start.IsZero() {
				return
			}
			day := dayIn(rule.Start, loc)
			if day.Before(first) || day.After(last) {
				return
			}
			yield(activityOccurrence(rule, at.On(day)))
			return
		}

		days := rule.RepeatDays.Days()
		if len(days) == 0 {
			return
		}
		if !rule.Start.IsZero() {
			if start := dayIn(rule.Start, loc); start.After(first) {
				first = start
			}
			if first.After(last) {
				return
			}
		}

		byDay := make([]rrule.Weekday, 0, len(days))
		for _, d := range days {
			byDay = append(byDay, rruleDays[d])
		}
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Interval:  1,
			Wkst:      c.weekStartDay(),
			Byweekday: byDay,
			Dtstart:   at.On(first),
			Until:     at.On(last),
		})
		if err != nil {
			appLog.Error("expand: failed to build activity rule", err, "activity_id", rule.ActivityID)
			return
		}

		next := r.Iterator()
		for occ, ok := next(); ok; occ, ok = next() {
			if !yield(activityOccurrence(rule, at.On(occ))) {
				return
			}
		}
	}
}

func activityOccurrence(rule model.ActivityRule, due time.Time) model.ScheduledItem {
	item := model.ScheduledItem{
		ScheduleID: ScheduleID(rule.ActivityID, due),
		SourceID:   rule.ActivityID,
		Kind:       model.KindActivity,
		Title:      rule.Title,
		DueDate:    due,
		DueType:    model.DueExact,
	}
	if rule.Reminder != nil {
		item.Reminder = rule.Reminder.On(due)
	}
	return item
}

// AnchorDay returns the first occurrence day of an assessment rule: the
// first rule.DayOfWeek on or after the assigned date. Without an assigned
// date the anchor is taken from the start of fallback's week instead.
func (c Calendar) AnchorDay(rule model.AssessmentRule, fallback time.Time) time.Time {
	base := c.StartOfWeek(fallback)
	if !rule.AssignedDate.IsZero() {
		base = dayIn(rule.AssignedDate, fallback.Location())
	}
	shift := (int(rule.DayOfWeek.Std()) - int(base.Weekday()) + 7) % 7
	return base.AddDate(0, 0, shift)
}

// ExpandAssessment yields the day-scoped occurrences of an assigned
// assessment between the civil days of rangeStart and rangeEnd, inclusive.
// Occurrences fall on rule.DayOfWeek every Frequency.Interval() weeks,
// counted from AnchorDay. Frequency None or an unassigned rule yields
// nothing.
func (c Calendar) ExpandAssessment(rule model.AssessmentRule, rangeStart, rangeEnd time.Time) iter.Seq[model.ScheduledItem] {
	return func(yield func(model.ScheduledItem) bool) {
		interval := rule.Frequency.Interval()
		if !rule.Assigned || interval <= 0 || !rule.DayOfWeek.Valid() {
			return
		}
		first, last, ok := c.dayRange(rangeStart, rangeEnd)
		if !ok {
			return
		}

		anchor := c.AnchorDay(rule, first)
		if anchor.Before(first) {
			// Skip whole periods so iteration starts near the range.
			periods := c.DayDifference(first, anchor) / (7 * interval)
			anchor = anchor.AddDate(0, 0, periods*7*interval)
		}
		if anchor.After(last) {
			return
		}

		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Interval:  interval,
			Wkst:      c.weekStartDay(),
			Byweekday: []rrule.Weekday{rruleDays[rule.DayOfWeek]},
			Dtstart:   anchor,
			Until:     last,
		})
		if err != nil {
			appLog.Error("expand: failed to build assessment rule", err, "assessment_id", rule.AssessmentID)
			return
		}

		next := r.Iterator()
		for occ, ok := next(); ok; occ, ok = next() {
			if occ.Before(first) {
				continue
			}
			occ = dayIn(occ, first.Location())
			item := model.ScheduledItem{
				ScheduleID: ScheduleID(rule.AssessmentID, occ),
				SourceID:   rule.AssessmentID,
				Kind:       model.KindAssessment,
				Title:      rule.Title,
				DueDate:    occ,
				DueType:    model.DueDay,
			}
			if !yield(item) {
				return
			}
		}
	}
}

// DescribeAssessmentRecurrence renders a rule the way the registry shows
// it, e.g. "Every 2 weeks on Mondays, assigned on 06/10/2024".
func (c Calendar) DescribeAssessmentRecurrence(rule model.AssessmentRule) string {
	if !rule.Assigned {
		return "Not assigned"
	}
	s := fmt.Sprintf("%s on %ss", rule.Frequency, rule.DayOfWeek)
	if !rule.AssignedDate.IsZero() {
		s += ", assigned on " + rule.AssignedDate.Format(c.DateLayout)
	}
	return s
}
