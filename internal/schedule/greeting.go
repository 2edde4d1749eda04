package schedule

import "time"

// TimeBucket is a coarse part of the day.
type TimeBucket int

const (
	Night     TimeBucket = iota // [00:00, 06:00)
	Morning                     // [06:00, 12:00)
	Afternoon                   // [12:00, 18:00)
	Evening                     // [18:00, 24:00)
)

func (b TimeBucket) String() string {
	switch b {
	case Night:
		return "night"
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	default:
		return "evening"
	}
}

// BucketOf buckets the hour of t. The date is ignored.
func BucketOf(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h < 6:
		return Night
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// GreetingFor returns the greeting shown for the hour of t.
func GreetingFor(t time.Time) string {
	switch BucketOf(t) {
	case Night:
		return "Good night"
	case Morning:
		return "Good morning"
	case Afternoon:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// chunkPhrase renders a bucket inside a due-status label.
func chunkPhrase(b TimeBucket) string {
	if b == Night {
		return "before morning"
	}
	return "in the " + b.String()
}
