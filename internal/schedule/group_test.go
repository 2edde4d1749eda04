package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/model"
)

func TestGroupByDay_DayItemsAppearExactlyOnce(t *testing.T) {
	var items []model.ScheduledItem
	for i := 0; i < 30; i++ {
		due := dateTime(2024, 6, 1, 8, 0).AddDate(0, 0, i/3).Add(time.Duration(i%3) * 4 * time.Hour)
		it := item(due, model.DueDay)
		it.ScheduleID = due.Format(time.RFC3339)
		items = append(items, it)
	}

	groups := GroupByDay(items)

	seen := make(map[string]int)
	for key, group := range groups {
		for _, it := range group {
			seen[it.ScheduleID]++
			assert.Equal(t, key, DayKeyOf(it.DueDate))
		}
	}
	require.Len(t, seen, len(items))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	assert.Len(t, groups, 10)
}

func TestGroupByDay_WeekItemOnAllSevenDays(t *testing.T) {
	it := item(dateTime(2024, 6, 14, 10, 0), model.DueWeek)

	groups := GroupByDay([]model.ScheduledItem{it})

	assert.Equal(t, []DayKey{
		"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13",
		"2024-06-14", "2024-06-15", "2024-06-16",
	}, groups.Keys())
	for _, key := range groups.Keys() {
		assert.Equal(t, []model.ScheduledItem{it}, groups[key])
	}
}

func TestGroupByDay_KeepsInsertionOrder(t *testing.T) {
	late := model.ScheduledItem{ScheduleID: "late", DueDate: dateTime(2024, 6, 12, 20, 0), DueType: model.DueExact}
	week := model.ScheduledItem{ScheduleID: "week", DueDate: dateTime(2024, 6, 10, 9, 0), DueType: model.DueWeek}
	early := model.ScheduledItem{ScheduleID: "early", DueDate: dateTime(2024, 6, 12, 7, 0), DueType: model.DueChunkOfDay}

	groups := GroupByDay([]model.ScheduledItem{late, week, early})

	got := groups["2024-06-12"]
	require.Len(t, got, 3)
	assert.Equal(t, "late", got[0].ScheduleID)
	assert.Equal(t, "week", got[1].ScheduleID)
	assert.Equal(t, "early", got[2].ScheduleID)

	_, ok := groups["2024-06-17"]
	assert.False(t, ok, "days without items have no entry")
}

func TestGroupByDay_Empty(t *testing.T) {
	assert.Empty(t, GroupByDay(nil))
}

func TestSortForDisplay(t *testing.T) {
	cal := DefaultCalendar()
	late := model.ScheduledItem{ScheduleID: "late", DueDate: dateTime(2024, 6, 12, 20, 0), DueType: model.DueExact}
	week := model.ScheduledItem{ScheduleID: "week", DueDate: dateTime(2024, 6, 14, 9, 0), DueType: model.DueWeek}
	b := model.ScheduledItem{ScheduleID: "b", DueDate: dateTime(2024, 6, 12, 7, 0), DueType: model.DueDay}
	a := model.ScheduledItem{ScheduleID: "a", DueDate: dateTime(2024, 6, 12, 7, 0), DueType: model.DueDay}
	input := []model.ScheduledItem{late, week, b, a}

	got := cal.SortForDisplay(input)

	ids := make([]string, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.ScheduleID)
	}
	assert.Equal(t, []string{"week", "a", "b", "late"}, ids)
	assert.Equal(t, "late", input[0].ScheduleID, "input is not modified")
}

func TestParseDayKey(t *testing.T) {
	got, err := ParseDayKey("2024-06-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 10), got)

	_, err = ParseDayKey("06/10/2024", time.UTC)
	assert.Error(t, err)
}
