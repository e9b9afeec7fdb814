package out

import (
	"context"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// Учетные данные вызова берутся из ctx (domain.WithCredential).
// Сбои сети и бэкенда оборачивают domain.ErrStoreUnavailable

type AvailabilityPort interface {
	ListRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error)
	CreateRule(ctx context.Context, rule domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, ruleID json_types.ID) error
}

type AppointmentPort interface {
	ListAppointments(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, appointmentID json_types.ID) (*domain.Appointment, error)
	// CreateAppointment условная вставка: domain.ErrSlotConflict, если
	// (doctor, date, time) уже занят не отмененной записью
	CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID json_types.ID, status domain.AppointmentStatus) (*domain.Appointment, error)
	UpdateAppointmentFields(ctx context.Context, appointmentID json_types.ID, fields domain.AppointmentFields) (*domain.Appointment, error)
}
