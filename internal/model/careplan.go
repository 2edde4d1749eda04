package model

import "time"

// Activity is a patient's planned behavioral-activation activity.
type Activity struct {
	ActivityID        string    `yaml:"activityId"`
	Name              string    `yaml:"name"`
	Value             string    `yaml:"value,omitempty"`
	LifeAreaID        string    `yaml:"lifeareaId,omitempty"`
	StartDate         time.Time `yaml:"startDate"`
	TimeOfDay         TimeOfDay `yaml:"timeOfDay"`
	HasReminder       bool      `yaml:"hasReminder,omitempty"`
	ReminderTimeOfDay TimeOfDay `yaml:"reminderTimeOfDay,omitempty"`
	HasRepetition     bool      `yaml:"hasRepetition,omitempty"`
	RepeatDayFlags    DayFlags  `yaml:"repeatDayFlags,omitempty"`

	// IsActive defaults to true when absent.
	IsActive  *bool `yaml:"isActive,omitempty"`
	IsDeleted bool  `yaml:"isDeleted,omitempty"`
}

// Active reports whether the activity should be scheduled.
func (a Activity) Active() bool {
	if a.IsDeleted {
		return false
	}
	return a.IsActive == nil || *a.IsActive
}

// Rule extracts the recurrence rule.
func (a Activity) Rule() ActivityRule {
	r := ActivityRule{
		ActivityID:    a.ActivityID,
		Title:         a.Name,
		Start:         a.StartDate,
		HasRepetition: a.HasRepetition,
	}
	if a.HasRepetition {
		r.RepeatDays = a.RepeatDayFlags
	}
	if a.HasReminder {
		rem := a.ReminderTimeOfDay
		r.Reminder = &rem
	}
	return r
}

// Assessment is a clinician-assigned questionnaire such as PHQ-9.
type Assessment struct {
	AssessmentID   string    `yaml:"assessmentId"`
	AssessmentName string    `yaml:"assessmentName"`
	Assigned       bool      `yaml:"assigned"`
	AssignedDate   time.Time `yaml:"assignedDate,omitempty"`
	Frequency      Frequency `yaml:"frequency"`
	DayOfWeek      Weekday   `yaml:"dayOfWeek"`
}

func (a Assessment) Rule() AssessmentRule {
	return AssessmentRule{
		AssessmentID: a.AssessmentID,
		Title:        a.AssessmentName,
		Assigned:     a.Assigned,
		AssignedDate: a.AssignedDate,
		Frequency:    a.Frequency,
		DayOfWeek:    a.DayOfWeek,
	}
}

// ActivityLog records what happened for one scheduled activity.
type ActivityLog struct {
	LogID        string    `yaml:"logId,omitempty"`
	ScheduleID   string    `yaml:"scheduleId"`
	ActivityName string    `yaml:"activityName,omitempty"`
	RecordedDate time.Time `yaml:"recordedDate"`
	Completed    bool      `yaml:"completed"`
	Comment      string    `yaml:"comment,omitempty"`
}

// AssessmentLog records a submitted assessment.
type AssessmentLog struct {
	LogID        string    `yaml:"logId,omitempty"`
	ScheduleID   string    `yaml:"scheduleId"`
	AssessmentID string    `yaml:"assessmentId"`
	RecordedDate time.Time `yaml:"recordedDate"`
	Completed    bool      `yaml:"completed"`
	TotalScore   *int      `yaml:"totalScore,omitempty"`
	Comment      string    `yaml:"comment,omitempty"`
}
