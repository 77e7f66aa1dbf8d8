package domain

import (
	"fmt"
	"time"
)

// TimeOfDayLayout is the wire format for intra-day timestamps.
const TimeOfDayLayout = "15:04:05"

// TimeOfDay is a clock time without a date. Workout start and end
// times arrive as times of day and only become full timestamps once
// combined with the workout's calendar date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a "HH:mm:ss" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse(TimeOfDayLayout, value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// At anchors the time of day on the given date, in the date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, t.Second, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
