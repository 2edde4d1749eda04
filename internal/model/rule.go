package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// At builds a TimeOfDay, rejecting values outside 00:00..23:59.
func At(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return t, nil
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// On stamps the time onto the civil day of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, day.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// UnmarshalYAML accepts either an hour number (9) or "HH:MM".
func (t *TimeOfDay) UnmarshalYAML(node *yaml.Node) error {
	var (
		parsed TimeOfDay
		err    error
	)
	if node.ShortTag() == "!!int" {
		var h int
		if err := node.Decode(&h); err != nil {
			return err
		}
		parsed, err = At(h, 0)
	} else {
		parsed, err = parseClock(node.Value)
	}
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalYAML() (any, error) {
	return t.String(), nil
}

func parseClock(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return At(h, m)
}

// Frequency is how often an assigned assessment recurs.
type Frequency string

const (
	FrequencyNone        Frequency = "None"
	FrequencyEveryWeek   Frequency = "Every week"
	FrequencyEvery2Weeks Frequency = "Every 2 weeks"
	FrequencyEvery3Weeks Frequency = "Every 3 weeks"
	FrequencyEvery4Weeks Frequency = "Every 4 weeks"
)

var frequencyIntervals = map[Frequency]int{
	FrequencyNone:        0,
	FrequencyEveryWeek:   1,
	FrequencyEvery2Weeks: 2,
	FrequencyEvery3Weeks: 3,
	FrequencyEvery4Weeks: 4,
}

// Interval returns the number of weeks between occurrences, 0 for None.
func (f Frequency) Interval() int {
	return frequencyIntervals[f]
}

func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	for f := range frequencyIntervals {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFrequency, s)
}

func (f *Frequency) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseFrequency(node.Value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ActivityRule is the recurrence part of an activity.
// With HasRepetition false the rule denotes a single occurrence on Start.
type ActivityRule struct {
	ActivityID    string
	Title         string
	Start         time.Time
	HasRepetition bool
	RepeatDays    DayFlags

	// Reminder, when non-nil, is stamped onto each occurrence's day.
	Reminder *TimeOfDay
}

// AssessmentRule is the recurrence part of an assessment.
type AssessmentRule struct {
	AssessmentID string
	Title        string
	Assigned     bool
	AssignedDate time.Time
	Frequency    Frequency
	DayOfWeek    Weekday
}
