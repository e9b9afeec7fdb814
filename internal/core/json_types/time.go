package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	timeLayout        = "15:04"
	timeLayoutSeconds = "15:04:05"
)

// Time время суток с точностью до минуты, на проводе HH:MM
type Time struct {
	Time time.Time
}

func NewTime(hour, minute int) Time {
	return Time{Time: time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC)}
}

func TimeFromMinutes(minutes int) Time {
	return NewTime(minutes/60, minutes%60)
}

func ParseTime(str string) (Time, error) {
	parsed, err := time.Parse(timeLayout, str)
	if err != nil {
		// Бэкенд отдает TimeField с секундами
		parsed, err = time.Parse(timeLayoutSeconds, str)
		if err != nil {
			return Time{}, fmt.Errorf("failed to parse time %q: %w", str, err)
		}
	}

	return NewTime(parsed.Hour(), parsed.Minute()), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse time: %w", err)
	}

	parsed, err := ParseTime(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t Time) String() string {
	return t.Time.Format(timeLayout)
}

// Minutes минуты от начала суток
func (t Time) Minutes() int {
	return t.Time.Hour()*60 + t.Time.Minute()
}

func (t Time) Equal(other Time) bool {
	return t.Minutes() == other.Minutes()
}

func (t Time) Before(other Time) bool {
	return t.Minutes() < other.Minutes()
}
