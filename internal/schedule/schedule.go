package schedule

import (
	"iter"
	"time"

	"careplan/internal/model"
)

// The functions below use DefaultCalendar.

// IsDueOnDay is DefaultCalendar().IsDueOnDay.
func IsDueOnDay(item model.ScheduledItem, day time.Time) bool {
	return DefaultCalendar().IsDueOnDay(item, day)
}

// DescribeDueStatus is DefaultCalendar().DescribeDueStatus.
func DescribeDueStatus(item model.ScheduledItem, ref time.Time) string {
	return DefaultCalendar().DescribeDueStatus(item, ref)
}

// ExpandActivity is DefaultCalendar().ExpandActivity.
func ExpandActivity(rule model.ActivityRule, rangeStart, rangeEnd time.Time, at model.TimeOfDay) iter.Seq[model.ScheduledItem] {
	return DefaultCalendar().ExpandActivity(rule, rangeStart, rangeEnd, at)
}

// ExpandAssessment is DefaultCalendar().ExpandAssessment.
func ExpandAssessment(rule model.AssessmentRule, rangeStart, rangeEnd time.Time) iter.Seq[model.ScheduledItem] {
	return DefaultCalendar().ExpandAssessment(rule, rangeStart, rangeEnd)
}

// GroupByDay is DefaultCalendar().GroupByDay.
func GroupByDay(items []model.ScheduledItem) DayGroups {
	return DefaultCalendar().GroupByDay(items)
}
