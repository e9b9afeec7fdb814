package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// Weekday день недели в формате бэкенда: полное английское название
type Weekday string

const (
	WeekdayMonday    Weekday = "Monday"
	WeekdayTuesday   Weekday = "Tuesday"
	WeekdayWednesday Weekday = "Wednesday"
	WeekdayThursday  Weekday = "Thursday"
	WeekdayFriday    Weekday = "Friday"
	WeekdaySaturday  Weekday = "Saturday"
	WeekdaySunday    Weekday = "Sunday"
)

var weekdays = map[Weekday]time.Weekday{
	WeekdayMonday:    time.Monday,
	WeekdayTuesday:   time.Tuesday,
	WeekdayWednesday: time.Wednesday,
	WeekdayThursday:  time.Thursday,
	WeekdayFriday:    time.Friday,
	WeekdaySaturday:  time.Saturday,
	WeekdaySunday:    time.Sunday,
}

func WeekdayOf(date json_types.Date) Weekday {
	return Weekday(date.Weekday().String())
}

func (w Weekday) IsValid() bool {
	_, ok := weekdays[w]
	return ok
}

// Matches сравнивает день недели с днем недели календарной даты
func (w Weekday) Matches(date json_types.Date) bool {
	wd, ok := weekdays[w]
	return ok && wd == date.Weekday()
}

// Normalize приводит "monday", "MONDAY" к "Monday"
func (w Weekday) Normalize() Weekday {
	s := strings.ToLower(strings.TrimSpace(string(w)))
	if s == "" {
		return w
	}
	return Weekday(strings.ToUpper(s[:1]) + s[1:])
}

// AvailabilityRule еженедельное окно приема врача
type AvailabilityRule struct {
	ID                  json_types.ID   `json:"id,omitempty"`
	DoctorID            json_types.ID   `json:"doctor"`
	DayOfWeek           Weekday         `json:"day_of_week"`
	StartTime           json_types.Time `json:"start_time"`
	EndTime             json_types.Time `json:"end_time"`
	SlotDurationMinutes int             `json:"slot_duration_minutes"`
}

// Validate проверяет правило при создании. Длительность и границы окна
// проверяются здесь, а не при генерации слотов
func (r AvailabilityRule) Validate() error {
	if r.DoctorID.IsEmpty() {
		return &ConfigurationError{Field: "doctor", Message: "doctor is required"}
	}
	if !r.DayOfWeek.IsValid() {
		return &ConfigurationError{Field: "day_of_week", Message: fmt.Sprintf("unknown day of week %q", r.DayOfWeek)}
	}
	if !r.StartTime.Before(r.EndTime) {
		return &ConfigurationError{Field: "start_time", Message: "start_time must be before end_time"}
	}
	if r.SlotDurationMinutes <= 0 {
		return &ConfigurationError{Field: "slot_duration_minutes", Message: "slot_duration_minutes must be positive"}
	}
	return nil
}

// Overlaps пересекаются ли окна двух правил одного врача в один день недели
func (r AvailabilityRule) Overlaps(other AvailabilityRule) bool {
	if r.DoctorID != other.DoctorID || r.DayOfWeek != other.DayOfWeek {
		return false
	}
	return r.StartTime.Before(other.EndTime) && other.StartTime.Before(r.EndTime)
}

// RuleWarning предупреждение, не блокирующее создание правила
type RuleWarning struct {
	Code   string        `json:"code"`
	RuleID json_types.ID `json:"rule"`
}

const RuleWarningOverlap = "overlaps_existing_rule"
