package schedule

import (
	"fmt"
	"time"

	"careplan/internal/model"
)

// IsDueOnDay reports whether item should be shown on day. Week items match
// every day of their week; everything else matches its own civil day.
func (c Calendar) IsDueOnDay(item model.ScheduledItem, day time.Time) bool {
	if item.DueType == model.DueWeek {
		return c.IsSameWeek(item.DueDate, day)
	}
	return c.IsSameDay(item.DueDate, day)
}

// RelativeDay names date relative to ref. Only today, tomorrow and
// yesterday get words; any other day is rendered with DateLayout.
func (c Calendar) RelativeDay(date, ref time.Time) string {
	switch c.DayDifference(date, ref) {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	case -1:
		return "yesterday"
	default:
		return date.Format(c.DateLayout)
	}
}

// DescribeDueStatus renders the label shown next to a scheduled item,
// e.g. "due tomorrow in the morning" or "due in 3 weeks".
func (c Calendar) DescribeDueStatus(item model.ScheduledItem, ref time.Time) string {
	switch item.DueType {
	case model.DueWeek:
		w := c.WeekDifference(item.DueDate, ref)
		switch {
		case w == 0:
			return "due this week"
		case w == 1:
			return "due next week"
		case w == -1:
			return "due last week"
		case w < -1:
			return fmt.Sprintf("due %d weeks ago", -w)
		default:
			return fmt.Sprintf("due in %d weeks", w)
		}
	case model.DueDay:
		return "due " + c.RelativeDay(item.DueDate, ref)
	case model.DueChunkOfDay:
		return "due " + c.RelativeDay(item.DueDate, ref) + " " + chunkPhrase(BucketOf(item.DueDate))
	default:
		return "due " + c.RelativeDay(item.DueDate, ref) + " at " + item.DueDate.Format(c.ClockLayout)
	}
}
