package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careplan/internal/model"
	"careplan/internal/schedule"
)

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func sampleItems() []model.ScheduledItem {
	return []model.ScheduledItem{
		{ScheduleID: "day", Kind: model.KindAssessment, Title: "PHQ-9", DueDate: utc(2024, 6, 10, 0, 0), DueType: model.DueDay},
		{ScheduleID: "week", Kind: model.KindActivity, Title: "Plan the week", DueDate: utc(2024, 6, 13, 0, 0), DueType: model.DueWeek},
		{ScheduleID: "chunk", Kind: model.KindActivity, Title: "Stretch", DueDate: utc(2024, 6, 11, 14, 20), DueType: model.DueChunkOfDay},
		{ScheduleID: "exact", Kind: model.KindActivity, Title: "Morning walk", DueDate: utc(2024, 6, 12, 9, 0), DueType: model.DueExact, Reminder: utc(2024, 6, 12, 8, 30)},
	}
}

func TestExport(t *testing.T) {
	out := Export(sampleItems(), ExportOptions{Name: "Jordan", Stamp: utc(2024, 6, 1, 0, 0)})

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Jordan",
		"UID:day@careplan",
		"DTSTART;VALUE=DATE:20240610",
		"DTEND;VALUE=DATE:20240611",
		"X-CAREPLAN-DUE-TYPE:Day",
		"DTEND;VALUE=DATE:20240617",
		"DTSTART:20240611T120000Z",
		"DTEND:20240611T180000Z",
		"DTSTART:20240612T090000Z",
		"DTEND:20240612T093000Z",
		"TRIGGER:-PT30M",
		"CATEGORIES:assessment",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VALARM"))
}

func TestExport_WeekFollowsCalendar(t *testing.T) {
	cal := schedule.DefaultCalendar()
	cal.WeekStart = time.Sunday
	week := sampleItems()[1:2]

	out := Export(week, ExportOptions{Calendar: cal})

	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240609")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240616")
}

func TestExportParseRoundTrip(t *testing.T) {
	body := Export(sampleItems(), ExportOptions{})

	items, err := ParseItems(Source{ID: "self"}, []byte(body), ImportOptions{})
	require.NoError(t, err)
	require.Len(t, items, 4)

	want := []struct {
		title   string
		due     time.Time
		dueType model.DueType
	}{
		{"PHQ-9", utc(2024, 6, 10, 0, 0), model.DueDay},
		{"Plan the week", utc(2024, 6, 10, 0, 0), model.DueWeek},
		{"Stretch", utc(2024, 6, 11, 12, 0), model.DueChunkOfDay},
		{"Morning walk", utc(2024, 6, 12, 9, 0), model.DueExact},
	}
	for i, w := range want {
		assert.Equal(t, w.title, items[i].Title)
		assert.True(t, w.due.Equal(items[i].DueDate), "%s: got %s", w.title, items[i].DueDate)
		assert.Equal(t, w.dueType, items[i].DueType)
		assert.Equal(t, model.KindExternal, items[i].Kind)
	}

	// Status labels survive the round trip.
	cal := schedule.DefaultCalendar()
	ref := utc(2024, 6, 11, 8, 0)
	assert.Equal(t, "due this week", cal.DescribeDueStatus(items[1], ref))
	assert.Equal(t, "due today in the afternoon", cal.DescribeDueStatus(items[2], ref))
}

const clinicFeed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//clinic//EN
BEGIN:VEVENT
UID:session
DTSTAMP:20240601T000000Z
SUMMARY:Therapy session
DTSTART:20240603T150000Z
DTEND:20240603T160000Z
RRULE:FREQ=WEEKLY;BYDAY=MO
EXDATE:20240617T150000Z
END:VEVENT
BEGIN:VEVENT
UID:closed
DTSTAMP:20240601T000000Z
SUMMARY:Clinic closed
DTSTART;VALUE=DATE:20240612
DTEND;VALUE=DATE:20240613
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20240601T000000Z
SUMMARY:No uid
DTSTART:20240612T100000Z
END:VEVENT
END:VCALENDAR
`

func TestParseItems_Feed(t *testing.T) {
	items, err := ParseItems(Source{ID: "clinic"}, []byte(clinicFeed), ImportOptions{
		RangeStart: utc(2024, 6, 10, 0, 0),
		RangeEnd:   utc(2024, 6, 30, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "session", items[0].SourceID)
	assert.Equal(t, utc(2024, 6, 10, 15, 0), items[0].DueDate)
	assert.Equal(t, model.DueExact, items[0].DueType)
	assert.Equal(t, utc(2024, 6, 24, 15, 0), items[1].DueDate, "the 17th is excluded")
	assert.NotEqual(t, items[0].ScheduleID, items[1].ScheduleID)

	assert.Equal(t, "Clinic closed", items[2].Title)
	assert.Equal(t, utc(2024, 6, 12, 0, 0), items[2].DueDate)
	assert.Equal(t, model.DueDay, items[2].DueType)
}

func TestParseItems_Location(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	items, err := ParseItems(Source{ID: "clinic"}, []byte(clinicFeed), ImportOptions{Location: loc})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, time.Date(2024, 6, 3, 10, 0, 0, 0, loc), items[0].DueDate)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, loc), items[1].DueDate, "all-day dates keep their calendar date")
}

func TestParseItems_RangeInImportZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 11th is still the evening of the 10th in loc.
	at := utc(2024, 6, 11, 2, 0)

	items, err := ParseItems(Source{ID: "clinic"}, []byte(clinicFeed), ImportOptions{
		Location:   loc,
		RangeStart: at,
		RangeEnd:   at,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "session", items[0].SourceID)
	assert.Equal(t, time.Date(2024, 6, 10, 10, 0, 0, 0, loc), items[0].DueDate)
	assert.Equal(t, "closed", items[1].SourceID)
}

func TestParseItems_Errors(t *testing.T) {
	_, err := ParseItems(Source{ID: "x"}, nil, ImportOptions{})
	assert.Error(t, err)

	_, err = ParseItems(Source{ID: "x"}, []byte("BEGIN:VCALENDAR\nBEGIN:VEVENT\nUID:a\nDTSTART:20240612T100000Z\nX-CAREPLAN-DUE-TYPE:Fortnight\nEND:VEVENT\nEND:VCALENDAR\n"), ImportOptions{})
	assert.NoError(t, err, "a bad event is skipped, not fatal")
}
