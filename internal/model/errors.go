package model

import "errors"

var (
	ErrUnknownDueType   = errors.New("unknown due type")
	ErrUnknownWeekday   = errors.New("unknown weekday")
	ErrUnknownFrequency = errors.New("unknown frequency")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
)
