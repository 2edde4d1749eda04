package model

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DueType classifies how an item's due date is matched and displayed.
type DueType string

const (
	DueDay        DueType = "Day"
	DueWeek       DueType = "Week"
	DueChunkOfDay DueType = "ChunkOfDay"
	DueExact      DueType = "Exact"
)

// ParseDueType accepts the four due-type tags, case-insensitively.
func ParseDueType(s string) (DueType, error) {
	for _, dt := range []DueType{DueDay, DueWeek, DueChunkOfDay, DueExact} {
		if strings.EqualFold(strings.TrimSpace(s), string(dt)) {
			return dt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDueType, s)
}

func (d *DueType) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDueType(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ItemKind records where a scheduled item came from.
type ItemKind string

const (
	KindActivity   ItemKind = "activity"
	KindAssessment ItemKind = "assessment"
	KindExternal   ItemKind = "external"
)

// ScheduledItem is one concrete occurrence with a due date.
//
// DueType is fixed when the item is created. For DueWeek, DueDate may be any
// instant within the due week; for DueDay it names the civil day; for
// DueChunkOfDay and DueExact it is a time within the day.
type ScheduledItem struct {
	ScheduleID string    `json:"scheduleId" yaml:"scheduleId"`
	SourceID   string    `json:"sourceId,omitempty" yaml:"sourceId,omitempty"`
	Kind       ItemKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	DueDate    time.Time `json:"dueDate" yaml:"dueDate"`
	DueType    DueType   `json:"dueType" yaml:"dueType"`

	// Reminder is the zero time when the item has no reminder.
	Reminder time.Time `json:"reminder,omitzero" yaml:"reminder,omitempty"`
}
