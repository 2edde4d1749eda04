package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"careplan/internal/model"
	"careplan/internal/schedule"
)

// ErrInvalidPlan wraps every validation failure.
var ErrInvalidPlan = errors.New("invalid plan")

// Patient identifies whose plan this is.
type Patient struct {
	Name string `yaml:"name"`
	MRN  string `yaml:"mrn,omitempty"`
}

// Plan is a patient's care plan as read from disk.
type Plan struct {
	Patient        Patient               `yaml:"patient"`
	Activities     []model.Activity      `yaml:"activities"`
	Assessments    []model.Assessment    `yaml:"assessments"`
	ActivityLogs   []model.ActivityLog   `yaml:"activityLogs"`
	AssessmentLogs []model.AssessmentLog `yaml:"assessmentLogs"`

	completed map[string]bool
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML into a Plan. Unknown fields, unknown enum tags and
// inconsistent records are rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPlan)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.index()
	return &p, nil
}

// Validate reports every problem found, joined.
func (p *Plan) Validate() error {
	var errs []error
	addf := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidPlan}, args...)...))
	}

	seen := make(map[string]bool)
	for i, a := range p.Activities {
		switch {
		case a.ActivityID == "":
			addf("activity %d: missing activityId", i)
		case seen[a.ActivityID]:
			addf("activity %q: duplicate id", a.ActivityID)
		}
		seen[a.ActivityID] = true
		if a.StartDate.IsZero() {
			addf("activity %q: missing startDate", a.ActivityID)
		}
		if !a.TimeOfDay.Valid() {
			addf("activity %q: invalid timeOfDay %s", a.ActivityID, a.TimeOfDay)
		}
		if a.HasReminder && !a.ReminderTimeOfDay.Valid() {
			addf("activity %q: invalid reminderTimeOfDay %s", a.ActivityID, a.ReminderTimeOfDay)
		}
	}

	for i, a := range p.Assessments {
		switch {
		case a.AssessmentID == "":
			addf("assessment %d: missing assessmentId", i)
		case seen[a.AssessmentID]:
			addf("assessment %q: duplicate id", a.AssessmentID)
		}
		seen[a.AssessmentID] = true
		if a.Assigned && a.Frequency == "" {
			addf("assessment %q: assigned without frequency", a.AssessmentID)
		}
	}

	for i, l := range p.ActivityLogs {
		if l.ScheduleID == "" {
			addf("activity log %d: missing scheduleId", i)
		}
	}
	for i, l := range p.AssessmentLogs {
		if l.ScheduleID == "" {
			addf("assessment log %d: missing scheduleId", i)
		}
	}

	return errors.Join(errs...)
}

func (p *Plan) index() {
	p.completed = make(map[string]bool)
	for _, l := range p.ActivityLogs {
		if l.Completed {
			p.completed[l.ScheduleID] = true
		}
	}
	for _, l := range p.AssessmentLogs {
		if l.Completed {
			p.completed[l.ScheduleID] = true
		}
	}
}

// Completed reports whether a log marks the occurrence as done.
func (p *Plan) Completed(scheduleID string) bool {
	return p.completed[scheduleID]
}

// Occurrences expands every active activity and assigned assessment
// between the civil days of rangeStart and rangeEnd. Activities come first,
// in file order, then assessments.
func (p *Plan) Occurrences(cal schedule.Calendar, rangeStart, rangeEnd time.Time) []model.ScheduledItem {
	var out []model.ScheduledItem
	for _, a := range p.Activities {
		if !a.Active() {
			continue
		}
		out = slices.AppendSeq(out, cal.ExpandActivity(a.Rule(), rangeStart, rangeEnd, a.TimeOfDay))
	}
	for _, a := range p.Assessments {
		out = slices.AppendSeq(out, cal.ExpandAssessment(a.Rule(), rangeStart, rangeEnd))
	}
	return out
}

// AssessmentSchedule is the registry's one-line view of an assessment.
type AssessmentSchedule struct {
	AssessmentID string `json:"assessmentId"`
	Name         string `json:"name"`
	Recurrence   string `json:"recurrence"`
}

// AssessmentSchedules describes each assessment's recurrence, in file order.
func (p *Plan) AssessmentSchedules(cal schedule.Calendar) []AssessmentSchedule {
	out := make([]AssessmentSchedule, 0, len(p.Assessments))
	for _, a := range p.Assessments {
		out = append(out, AssessmentSchedule{
			AssessmentID: a.AssessmentID,
			Name:         a.AssessmentName,
			Recurrence:   cal.DescribeAssessmentRecurrence(a.Rule()),
		})
	}
	return out
}
