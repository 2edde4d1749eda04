package schedule

import (
	"cmp"
	"slices"
	"time"

	"careplan/internal/model"
)

const dayKeyLayout = "2006-01-02"

// DayKey identifies a civil day independent of locale, e.g. "2024-06-10".
// Keys sort chronologically as strings.
type DayKey string

// DayKeyOf returns the key of t's civil day in t's location.
func DayKeyOf(t time.Time) DayKey {
	return DayKey(t.Format(dayKeyLayout))
}

// ParseDayKey parses a key back into midnight of that day in loc.
func ParseDayKey(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, s, loc)
}

// DayGroups maps a civil day to the items due that day. Days without items
// have no entry.
type DayGroups map[DayKey][]model.ScheduledItem

// Keys returns the days present, earliest first.
func (g DayGroups) Keys() []DayKey {
	keys := make([]DayKey, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GroupByDay places each item under its civil day. A week-scoped item is
// placed under all seven days of its week. Within a day, items keep their
// input order.
func (c Calendar) GroupByDay(items []model.ScheduledItem) DayGroups {
	groups := make(DayGroups)
	for _, item := range items {
		if item.DueType == model.DueWeek {
			start := c.StartOfWeek(item.DueDate)
			for i := 0; i < 7; i++ {
				key := DayKeyOf(start.AddDate(0, 0, i))
				groups[key] = append(groups[key], item)
			}
			continue
		}
		key := DayKeyOf(item.DueDate)
		groups[key] = append(groups[key], item)
	}
	return groups
}

// SortForDisplay returns a copy of items in display order: by due time,
// with week-scoped items timed at the start of their week, ties broken by
// ScheduleID. GroupByDay never reorders; callers opt into this order.
func (c Calendar) SortForDisplay(items []model.ScheduledItem) []model.ScheduledItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.ScheduledItem) int {
		if n := c.displayTime(a).Compare(c.displayTime(b)); n != 0 {
			return n
		}
		return cmp.Compare(a.ScheduleID, b.ScheduleID)
	})
	return out
}

func (c Calendar) displayTime(item model.ScheduledItem) time.Time {
	if item.DueType == model.DueWeek {
		return c.StartOfWeek(item.DueDate)
	}
	return item.DueDate
}
