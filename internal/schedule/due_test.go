package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"careplan/internal/model"
)

var refMonday = date(2024, 6, 10)

func item(due time.Time, dt model.DueType) model.ScheduledItem {
	return model.ScheduledItem{ScheduleID: "s-" + string(DayKeyOf(due)), DueDate: due, DueType: dt}
}

func TestIsDueOnDay_DayItemsMatchOnlyTheirDay(t *testing.T) {
	due := dateTime(2024, 6, 10, 14, 0)
	it := item(due, model.DueDay)

	for offset := -400; offset <= 400; offset++ {
		day := due.AddDate(0, 0, offset).Add(-3 * time.Hour)
		want := DefaultCalendar().IsSameDay(day, due)
		assert.Equal(t, want, IsDueOnDay(it, day), "offset %d", offset)
	}
	assert.True(t, IsDueOnDay(it, date(2024, 6, 10)))
	assert.False(t, IsDueOnDay(it, date(2024, 6, 11)))
}

func TestIsDueOnDay_WeekItemsMatchWholeWeek(t *testing.T) {
	it := item(dateTime(2024, 6, 13, 9, 0), model.DueWeek) // Thursday

	for offset := -7; offset < 14; offset++ {
		day := date(2024, 6, 10).AddDate(0, 0, offset)
		inWeek := offset >= 0 && offset < 7
		assert.Equal(t, inWeek, IsDueOnDay(it, day), "day %s", day.Format("2006-01-02"))
	}
}

func TestDescribeDueStatus_DayBoundaryTable(t *testing.T) {
	cases := []struct {
		due  time.Time
		want string
	}{
		{date(2024, 6, 10), "due today"},
		{date(2024, 6, 11), "due tomorrow"},
		{date(2024, 6, 9), "due yesterday"},
		{date(2024, 6, 12), "due 06/12/2024"},
		{date(2024, 6, 8), "due 06/08/2024"},
		{date(2024, 6, 20), "due 06/20/2024"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DescribeDueStatus(item(tc.due, model.DueDay), refMonday))
	}
}

func TestDescribeDueStatus_WeekTable(t *testing.T) {
	cases := []struct {
		due  time.Time
		want string
	}{
		{date(2024, 6, 10), "due this week"},
		{date(2024, 6, 16), "due this week"},
		{date(2024, 6, 17), "due next week"},
		{date(2024, 6, 9), "due last week"},
		{date(2024, 5, 20), "due 3 weeks ago"},
		{date(2024, 7, 3), "due in 3 weeks"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DescribeDueStatus(item(tc.due, model.DueWeek), refMonday), tc.due.Format("2006-01-02"))
	}
}

func TestDescribeDueStatus_ChunkOfDay(t *testing.T) {
	ref := dateTime(2024, 6, 10, 7, 0)

	assert.Equal(t, "due today in the morning", DescribeDueStatus(item(dateTime(2024, 6, 10, 8, 0), model.DueChunkOfDay), ref))
	assert.Equal(t, "due tomorrow before morning", DescribeDueStatus(item(dateTime(2024, 6, 11, 3, 0), model.DueChunkOfDay), ref))
	assert.Equal(t, "due yesterday in the afternoon", DescribeDueStatus(item(dateTime(2024, 6, 9, 12, 0), model.DueChunkOfDay), ref))
	assert.Equal(t, "due 06/14/2024 in the evening", DescribeDueStatus(item(dateTime(2024, 6, 14, 18, 0), model.DueChunkOfDay), ref))
}

func TestDescribeDueStatus_Exact(t *testing.T) {
	ref := dateTime(2024, 6, 10, 22, 0)

	assert.Equal(t, "due today at 3:00 pm", DescribeDueStatus(item(dateTime(2024, 6, 10, 15, 0), model.DueExact), ref))
	assert.Equal(t, "due tomorrow at 12:30 am", DescribeDueStatus(item(dateTime(2024, 6, 11, 0, 30), model.DueExact), ref))
	assert.Equal(t, "due 06/12/2024 at 9:05 am", DescribeDueStatus(item(dateTime(2024, 6, 12, 9, 5), model.DueExact), ref))
}

func TestDescribeDueStatus_CustomLayouts(t *testing.T) {
	cal := DefaultCalendar()
	cal.DateLayout = "2006-01-02"
	cal.ClockLayout = "15:04"

	got := cal.DescribeDueStatus(item(dateTime(2024, 6, 20, 15, 0), model.DueExact), refMonday)
	assert.Equal(t, "due 2024-06-20 at 15:00", got)
}
