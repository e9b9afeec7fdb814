package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date календарная дата без времени, на проводе YYYY-MM-DD
type Date struct {
	Date time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf берет календарную дату момента в его собственной таймзоне
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(str string) (Date, error) {
	parsed, err := time.Parse(dateLayout, str)
	if err != nil {
		// Бэкенд иногда отдает дату со временем
		parsed, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return Date{}, fmt.Errorf("failed to parse date %q: %w", str, err)
		}
	}

	return NewDate(parsed.Year(), parsed.Month(), parsed.Day()), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse date: %w", err)
	}

	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Date) String() string {
	return d.Date.Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d.Date.IsZero()
}

func (d Date) Weekday() time.Weekday {
	return d.Date.Weekday()
}

func (d Date) Equal(other Date) bool {
	return d.Date.Equal(other.Date)
}

func (d Date) Before(other Date) bool {
	return d.Date.Before(other.Date)
}

func (d Date) AddDays(days int) Date {
	return Date{Date: d.Date.AddDate(0, 0, days)}
}
