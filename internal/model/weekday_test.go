package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWeekdayStdRoundTrip(t *testing.T) {
	assert.Equal(t, time.Monday, Monday.Std())
	assert.Equal(t, time.Sunday, Sunday.Std())
	for _, d := range Weekdays {
		assert.Equal(t, d, WeekdayOf(d.Std()))
	}
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday(" thursday ")
	require.NoError(t, err)
	assert.Equal(t, Thursday, d)

	_, err = ParseWeekday("Thu")
	assert.True(t, errors.Is(err, ErrUnknownWeekday))
	assert.Equal(t, "Weekday(9)", Weekday(9).String())
}

func TestDayFlagsYAML(t *testing.T) {
	var f DayFlags
	require.NoError(t, yaml.Unmarshal([]byte("{Monday: true, Thursday: true, Friday: false}"), &f))
	assert.Equal(t, []Weekday{Monday, Thursday}, f.Days())
	assert.True(t, f.Any())
	assert.True(t, f.Has(Thursday))
	assert.False(t, f.Has(Friday))

	out, err := yaml.Marshal(f)
	require.NoError(t, err)
	var back DayFlags
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, f, back)
}

func TestDayFlagsYAML_RejectsUnknownDay(t *testing.T) {
	var f DayFlags
	err := yaml.Unmarshal([]byte("{Monday: true, Funday: true}"), &f)
	assert.True(t, errors.Is(err, ErrUnknownWeekday))

	err = yaml.Unmarshal([]byte("[Monday]"), &f)
	assert.Error(t, err)
}

func TestDayFlagsAllFalse(t *testing.T) {
	var f DayFlags
	assert.False(t, f.Any())
	assert.Empty(t, f.Days())

	f.Set(Weekday(12), true)
	assert.False(t, f.Any(), "out-of-range days are ignored")
}
