package domain

import (
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// Slot конкретный интервал приема на дату, не хранится, считается на лету
type Slot struct {
	DoctorID  json_types.ID   `json:"doctor"`
	RuleID    json_types.ID   `json:"rule"`
	Date      json_types.Date `json:"date"`
	StartTime json_types.Time `json:"start_time"`
	EndTime   json_types.Time `json:"end_time"`
	Available bool            `json:"available"`
}

func (s Slot) DurationMinutes() int {
	return s.EndTime.Minutes() - s.StartTime.Minutes()
}
