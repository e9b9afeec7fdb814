package in

import (
	"context"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// Отказы валидации возвращаются как *domain.Rejection, ошибки правил
// как *domain.ConfigurationError, сбои хранилищ оборачивают исходную ошибку
type SchedulingUseCase interface {
	// Управление доступностью врача
	ListAvailabilityRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error)
	AddAvailabilityRule(ctx context.Context, rule domain.AvailabilityRule) (*domain.AvailabilityRule, []domain.RuleWarning, error)
	RemoveAvailabilityRule(ctx context.Context, doctorID json_types.ID, ruleID json_types.ID) error

	// Слоты на дату: только свободные и полный календарь дня
	GetBookableSlots(ctx context.Context, doctorID json_types.ID, date json_types.Date) ([]domain.Slot, error)
	GetDaySchedule(ctx context.Context, doctorID json_types.ID, date json_types.Date) ([]domain.Slot, error)

	// Жизненный цикл записи
	Book(ctx context.Context, request domain.BookingRequest) (*domain.Appointment, error)
	EditAppointment(ctx context.Context, appointmentID json_types.ID, patientID json_types.ID, edit domain.AppointmentEdit) (*domain.Appointment, error)
	Reschedule(ctx context.Context, appointmentID json_types.ID, newDate json_types.Date, newTime json_types.Time, patientID json_types.ID) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, appointmentID json_types.ID, actor domain.Actor, status domain.AppointmentStatus) (*domain.Appointment, error)
	Cancel(ctx context.Context, appointmentID json_types.ID, actor domain.Actor) (*domain.Appointment, error)

	DoctorDashboard(ctx context.Context, doctorID json_types.ID) (*domain.DoctorDashboard, error)

	// Инвалидация кэша по событиям извне
	InvalidateDoctorRules(ctx context.Context, doctorID json_types.ID)
	InvalidateAllRules(ctx context.Context)
}
