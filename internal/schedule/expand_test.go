package schedule

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/model"
)

func dueDates(seq func(func(model.ScheduledItem) bool)) []time.Time {
	var out []time.Time
	for it := range seq {
		out = append(out, it.DueDate)
	}
	return out
}

func TestExpandActivity_RepeatingMondayThursday(t *testing.T) {
	rule := model.ActivityRule{
		ActivityID:    "walk",
		Title:         "Morning walk",
		HasRepetition: true,
		RepeatDays:    model.NewDayFlags(model.Monday, model.Thursday),
	}
	at := model.TimeOfDay{Hour: 9, Minute: 30}

	items := slices.Collect(ExpandActivity(rule, date(2024, 6, 10), date(2024, 6, 23), at))

	require.Len(t, items, 4)
	want := []time.Time{
		dateTime(2024, 6, 10, 9, 30),
		dateTime(2024, 6, 13, 9, 30),
		dateTime(2024, 6, 17, 9, 30),
		dateTime(2024, 6, 20, 9, 30),
	}
	for i, it := range items {
		assert.True(t, want[i].Equal(it.DueDate), "occurrence %d: got %s", i, it.DueDate)
		assert.Equal(t, model.DueExact, it.DueType)
		assert.Equal(t, model.KindActivity, it.Kind)
		assert.Equal(t, "walk", it.SourceID)
		assert.Equal(t, "Morning walk", it.Title)
		assert.True(t, it.Reminder.IsZero())
	}
}

func TestExpandActivity_IsRestartableAndDeterministic(t *testing.T) {
	rule := model.ActivityRule{
		ActivityID:    "journal",
		HasRepetition: true,
		RepeatDays:    model.NewDayFlags(model.Tuesday, model.Saturday),
	}
	seq := ExpandActivity(rule, date(2024, 6, 1), date(2024, 6, 30), model.TimeOfDay{Hour: 20})

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	require.NotEmpty(t, first)

	ids := make(map[string]bool)
	for _, it := range first {
		assert.False(t, ids[it.ScheduleID], "duplicate id %s", it.ScheduleID)
		ids[it.ScheduleID] = true
	}
}

func TestExpandActivity_StopsWhenConsumerBreaks(t *testing.T) {
	rule := model.ActivityRule{ActivityID: "a", HasRepetition: true, RepeatDays: model.NewDayFlags(model.Weekdays[:]...)}

	n := 0
	for range ExpandActivity(rule, date(2024, 1, 1), date(2030, 1, 1), model.TimeOfDay{Hour: 8}) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestExpandActivity_NonRepeating(t *testing.T) {
	rule := model.ActivityRule{ActivityID: "call", Start: date(2024, 6, 12)}
	at := model.TimeOfDay{Hour: 15}

	got := dueDates(ExpandActivity(rule, date(2024, 6, 10), date(2024, 6, 16), at))
	require.Len(t, got, 1)
	assert.True(t, dateTime(2024, 6, 12, 15, 0).Equal(got[0]))

	assert.Empty(t, dueDates(ExpandActivity(rule, date(2024, 6, 13), date(2024, 6, 16), at)))
	assert.Empty(t, dueDates(ExpandActivity(model.ActivityRule{ActivityID: "x"}, date(2024, 6, 10), date(2024, 6, 16), at)))
}

func TestExpandActivity_RangeEndIsInclusiveByDay(t *testing.T) {
	rule := model.ActivityRule{ActivityID: "a", HasRepetition: true, RepeatDays: model.NewDayFlags(model.Sunday)}

	got := dueDates(ExpandActivity(rule, date(2024, 6, 10), dateTime(2024, 6, 16, 0, 0), model.TimeOfDay{Hour: 21}))
	require.Len(t, got, 1)
	assert.True(t, dateTime(2024, 6, 16, 21, 0).Equal(got[0]))
}

func TestExpandActivity_DegenerateRules(t *testing.T) {
	at := model.TimeOfDay{Hour: 9}

	noFlags := model.ActivityRule{ActivityID: "a", HasRepetition: true}
	assert.Empty(t, dueDates(ExpandActivity(noFlags, date(2024, 6, 10), date(2024, 7, 10), at)))

	inverted := model.ActivityRule{ActivityID: "a", HasRepetition: true, RepeatDays: model.NewDayFlags(model.Monday)}
	assert.Empty(t, dueDates(ExpandActivity(inverted, date(2024, 7, 10), date(2024, 6, 10), at)))
}

func TestExpandActivity_SkipsDaysBeforeStart(t *testing.T) {
	rule := model.ActivityRule{
		ActivityID:    "a",
		Start:         dateTime(2024, 6, 14, 18, 0),
		HasRepetition: true,
		RepeatDays:    model.NewDayFlags(model.Monday, model.Thursday),
	}

	got := dueDates(ExpandActivity(rule, date(2024, 6, 10), date(2024, 6, 23), model.TimeOfDay{Hour: 9}))
	assert.Equal(t, []time.Time{dateTime(2024, 6, 17, 9, 0), dateTime(2024, 6, 20, 9, 0)}, got)
}

func TestExpandActivity_Reminder(t *testing.T) {
	rem := model.TimeOfDay{Hour: 8, Minute: 45}
	rule := model.ActivityRule{ActivityID: "a", Start: date(2024, 6, 12), Reminder: &rem}

	items := slices.Collect(ExpandActivity(rule, date(2024, 6, 10), date(2024, 6, 16), model.TimeOfDay{Hour: 9}))
	require.Len(t, items, 1)
	assert.True(t, dateTime(2024, 6, 12, 8, 45).Equal(items[0].Reminder))
}

func TestExpandActivity_KeepsWallClockAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	rule := model.ActivityRule{ActivityID: "a", HasRepetition: true, RepeatDays: model.NewDayFlags(model.Monday)}

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, ny)
	end := time.Date(2024, 3, 18, 0, 0, 0, 0, ny)
	items := slices.Collect(ExpandActivity(rule, start, end, model.TimeOfDay{Hour: 9}))

	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, 9, it.DueDate.Hour())
		assert.Equal(t, time.Monday, it.DueDate.Weekday())
	}
}

func TestScheduleID_StableAndDayScoped(t *testing.T) {
	a := ScheduleID("walk", dateTime(2024, 6, 10, 9, 0))
	b := ScheduleID("walk", dateTime(2024, 6, 10, 18, 0))
	c := ScheduleID("walk", dateTime(2024, 6, 11, 9, 0))
	d := ScheduleID("run", dateTime(2024, 6, 10, 9, 0))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 36)
}

func phq9(freq model.Frequency, assigned time.Time) model.AssessmentRule {
	return model.AssessmentRule{
		AssessmentID: "phq-9",
		Title:        "PHQ-9",
		Assigned:     true,
		AssignedDate: assigned,
		Frequency:    freq,
		DayOfWeek:    model.Monday,
	}
}

func TestExpandAssessment_EveryTwoWeeksFromAssignedDate(t *testing.T) {
	rule := phq9(model.FrequencyEvery2Weeks, date(2024, 6, 5)) // Wednesday

	items := slices.Collect(ExpandAssessment(rule, date(2024, 6, 1), date(2024, 7, 31)))

	want := []time.Time{date(2024, 6, 10), date(2024, 6, 24), date(2024, 7, 8), date(2024, 7, 22)}
	require.Len(t, items, len(want))
	for i, it := range items {
		assert.True(t, want[i].Equal(it.DueDate), "occurrence %d: got %s", i, it.DueDate)
		assert.Equal(t, model.DueDay, it.DueType)
		assert.Equal(t, model.KindAssessment, it.Kind)
		assert.Equal(t, "phq-9", it.SourceID)
	}
}

func TestExpandAssessment_KeepsPhaseFarFromAnchor(t *testing.T) {
	rule := phq9(model.FrequencyEvery2Weeks, date(2024, 1, 3)) // first occurrence 2024-01-08

	got := dueDates(ExpandAssessment(rule, date(2024, 6, 1), date(2024, 6, 30)))
	assert.Equal(t, []time.Time{date(2024, 6, 10), date(2024, 6, 24)}, got)
}

func TestExpandAssessment_AnchorOnAssignedWeekday(t *testing.T) {
	rule := phq9(model.FrequencyEvery3Weeks, date(2024, 6, 10))

	got := dueDates(ExpandAssessment(rule, date(2024, 6, 10), date(2024, 7, 31)))
	assert.Equal(t, []time.Time{date(2024, 6, 10), date(2024, 7, 1), date(2024, 7, 22)}, got)
}

func TestExpandAssessment_NoAssignedDateAnchorsOnRangeWeek(t *testing.T) {
	rule := phq9(model.FrequencyEveryWeek, time.Time{})
	rule.DayOfWeek = model.Wednesday

	got := dueDates(ExpandAssessment(rule, date(2024, 6, 13), date(2024, 6, 30)))
	assert.Equal(t, []time.Time{date(2024, 6, 19), date(2024, 6, 26)}, got)

	anchor := DefaultCalendar().AnchorDay(rule, date(2024, 6, 13))
	assert.True(t, DefaultCalendar().IsSameWeek(anchor, date(2024, 6, 13)))
}

func TestExpandAssessment_NothingScheduled(t *testing.T) {
	none := phq9(model.FrequencyNone, date(2024, 6, 5))
	assert.Empty(t, dueDates(ExpandAssessment(none, date(2024, 6, 1), date(2024, 12, 31))))

	unassigned := phq9(model.FrequencyEveryWeek, date(2024, 6, 5))
	unassigned.Assigned = false
	assert.Empty(t, dueDates(ExpandAssessment(unassigned, date(2024, 6, 1), date(2024, 12, 31))))

	future := phq9(model.FrequencyEveryWeek, date(2025, 1, 1))
	assert.Empty(t, dueDates(ExpandAssessment(future, date(2024, 6, 1), date(2024, 12, 31))))
}

func TestDescribeAssessmentRecurrence(t *testing.T) {
	cal := DefaultCalendar()

	assert.Equal(t, "Every 2 weeks on Mondays, assigned on 06/05/2024",
		cal.DescribeAssessmentRecurrence(phq9(model.FrequencyEvery2Weeks, date(2024, 6, 5))))
	assert.Equal(t, "Every week on Mondays",
		cal.DescribeAssessmentRecurrence(phq9(model.FrequencyEveryWeek, time.Time{})))

	unassigned := phq9(model.FrequencyEveryWeek, date(2024, 6, 5))
	unassigned.Assigned = false
	assert.Equal(t, "Not assigned", cal.DescribeAssessmentRecurrence(unassigned))
}
