package domain

import (
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCanceled
}

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCanceled:
		return true
	}
	return false
}

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) IsValid() bool {
	return s == SeverityMild || s == SeverityModerate || s == SeveritySevere
}

type Appointment struct {
	ID              json_types.ID     `json:"id,omitempty"`
	DoctorID        json_types.ID     `json:"doctor"`
	PatientID       json_types.ID     `json:"patient"`
	Date            json_types.Date   `json:"date"`
	Time            json_types.Time   `json:"time"`
	DurationMinutes int               `json:"duration_minutes"`
	Severity        Severity          `json:"severity"`
	Symptoms        string            `json:"symptoms"`
	Status          AppointmentStatus `json:"status"`
}

// Occupies занимает ли запись слот врача на дату и время
func (a Appointment) Occupies(doctorID json_types.ID, date json_types.Date, t json_types.Time) bool {
	return a.Status != AppointmentStatusCanceled &&
		a.DoctorID == doctorID &&
		a.Date.Equal(date) &&
		a.Time.Equal(t)
}

// BookingRequest запрос пациента на запись
type BookingRequest struct {
	DoctorID  json_types.ID   `json:"doctor"`
	PatientID json_types.ID   `json:"patient"`
	Date      json_types.Date `json:"date"`
	Time      json_types.Time `json:"time"`
	Severity  Severity        `json:"severity"`
	Symptoms  string          `json:"symptoms"`
}

// AppointmentEdit поля, которые пациент может менять, пока запись в pending.
// nil - поле не меняется
type AppointmentEdit struct {
	Date     *json_types.Date `json:"date,omitempty"`
	Time     *json_types.Time `json:"time,omitempty"`
	Severity *Severity        `json:"severity,omitempty"`
	Symptoms *string          `json:"symptoms,omitempty"`
}

// AppointmentFields частичное обновление записи в хранилище
type AppointmentFields struct {
	Date            *json_types.Date `json:"date,omitempty"`
	Time            *json_types.Time `json:"time,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	Severity        *Severity        `json:"severity,omitempty"`
	Symptoms        *string          `json:"symptoms,omitempty"`
}

// Apply применяет поля к копии записи
func (f AppointmentFields) Apply(a Appointment) Appointment {
	if f.Date != nil {
		a.Date = *f.Date
	}
	if f.Time != nil {
		a.Time = *f.Time
	}
	if f.DurationMinutes != nil {
		a.DurationMinutes = *f.DurationMinutes
	}
	if f.Severity != nil {
		a.Severity = *f.Severity
	}
	if f.Symptoms != nil {
		a.Symptoms = *f.Symptoms
	}
	return a
}

// AppointmentFilter пустые поля не фильтруют
type AppointmentFilter struct {
	DoctorID  json_types.ID
	PatientID json_types.ID
	Date      *json_types.Date
}

func (f AppointmentFilter) Matches(a Appointment) bool {
	if !f.DoctorID.IsEmpty() && a.DoctorID != f.DoctorID {
		return false
	}
	if !f.PatientID.IsEmpty() && a.PatientID != f.PatientID {
		return false
	}
	if f.Date != nil && !a.Date.Equal(*f.Date) {
		return false
	}
	return true
}

// DoctorDashboard сводка для главного экрана врача
type DoctorDashboard struct {
	Upcoming int          `json:"upcoming"`
	Today    int          `json:"today"`
	Pending  int          `json:"pending"`
	Next     *Appointment `json:"next"`
}
