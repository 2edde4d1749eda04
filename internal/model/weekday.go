package model

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weekday is a day of the week ordered Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays lists all seven days in order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Std converts to the standard library's Sunday-first weekday.
func (d Weekday) Std() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// WeekdayOf returns the weekday of a standard library weekday value.
func WeekdayOf(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

// ParseWeekday accepts full English day names, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

func (d *Weekday) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseWeekday(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Weekday) MarshalYAML() (any, error) {
	return d.String(), nil
}

// DayFlags is a fixed set of per-weekday booleans.
type DayFlags [7]bool

// NewDayFlags returns flags with the given days set.
func NewDayFlags(days ...Weekday) DayFlags {
	var f DayFlags
	for _, d := range days {
		f.Set(d, true)
	}
	return f
}

func (f *DayFlags) Set(d Weekday, on bool) {
	if d.Valid() {
		f[d] = on
	}
}

func (f DayFlags) Has(d Weekday) bool {
	return d.Valid() && f[d]
}

// Any reports whether at least one day is set.
func (f DayFlags) Any() bool {
	for _, on := range f {
		if on {
			return true
		}
	}
	return false
}

// Days returns the set days in Monday-first order.
func (f DayFlags) Days() []Weekday {
	var out []Weekday
	for _, d := range Weekdays {
		if f[d] {
			out = append(out, d)
		}
	}
	return out
}

// UnmarshalYAML decodes a mapping such as {Monday: true, Thursday: true}.
// Keys that are not weekday names are rejected.
func (f *DayFlags) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("day flags: expected mapping, got %s", node.Tag)
	}
	var out DayFlags
	for i := 0; i+1 < len(node.Content); i += 2 {
		d, err := ParseWeekday(node.Content[i].Value)
		if err != nil {
			return fmt.Errorf("day flags: %w", err)
		}
		var on bool
		if err := node.Content[i+1].Decode(&on); err != nil {
			return fmt.Errorf("day flags %s: %w", d, err)
		}
		out[d] = on
	}
	*f = out
	return nil
}

func (f DayFlags) MarshalYAML() (any, error) {
	m := make(map[string]bool, len(f))
	for _, d := range Weekdays {
		m[d.String()] = f[d]
	}
	return m, nil
}
