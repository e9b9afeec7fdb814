package scheduling_service

import (
	"context"
	"fmt"
	"time"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// Сколько раз повторяем запись после отказа хранилища из-за гонки
const maxBookingRetries = 1

type SchedulingService struct {
	availabilityPort out.AvailabilityPort
	appointmentPort  out.AppointmentPort
	cachePort        out.CachePort
	metricsPort      out.MetricsPort
	logger           out.LoggerPort

	now      func() time.Time
	location *time.Location
}

type Option func(*SchedulingService)

func WithClock(now func() time.Time) Option {
	return func(s *SchedulingService) {
		s.now = now
	}
}

func WithLocation(location *time.Location) Option {
	return func(s *SchedulingService) {
		if location != nil {
			s.location = location
		}
	}
}

func NewSchedulingService(
	availabilityPort out.AvailabilityPort,
	appointmentPort out.AppointmentPort,
	cachePort out.CachePort,
	metricsPort out.MetricsPort,
	logger out.LoggerPort,
	opts ...Option,
) *SchedulingService {
	s := &SchedulingService{
		availabilityPort: availabilityPort,
		appointmentPort:  appointmentPort,
		cachePort:        cachePort,
		metricsPort:      metricsPort,
		logger:           logger.WithModule("SchedulingService"),
		now:              time.Now,
		location:         time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SchedulingService) GetBookableSlots(ctx context.Context, doctorID json_types.ID, date json_types.Date) ([]domain.Slot, error) {
	slots, err := s.GetDaySchedule(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return filterAvailable(slots), nil
}

// GetDaySchedule полный календарь дня: свободные и занятые слоты
func (s *SchedulingService) GetDaySchedule(ctx context.Context, doctorID json_types.ID, date json_types.Date) ([]domain.Slot, error) {
	s.logger.Debug("slots.generate.started", out.LogFields{
		"doctorId": doctorID,
		"date":     date.String(),
	})

	rules, err := s.getRules(ctx, doctorID)
	if err != nil {
		s.logger.Error("slots.generate.rules.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.rules.fetch_failed: %w", err)
	}

	slots := generateDaySlots(rules, date)
	if len(slots) == 0 {
		return slots, nil
	}

	appointments, err := s.appointmentPort.ListAppointments(ctx, domain.AppointmentFilter{
		DoctorID: doctorID,
		Date:     &date,
	})
	if err != nil {
		s.logger.Error("slots.generate.appointments.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("slots.generate.appointments.fetch_failed: %w", err)
	}

	slots = MarkAvailability(slots, appointments)

	if s.metricsPort != nil {
		s.metricsPort.ObserveSlotsGenerated(len(slots))
	}

	s.logger.Debug("slots.generate.success", out.LogFields{
		"doctorId":     doctorID,
		"date":         date.String(),
		"slotsCount":   len(slots),
		"appointments": len(appointments),
	})

	return slots, nil
}

// bookingContext собирает правила и записи врача на дату для валидатора
func (s *SchedulingService) bookingContext(ctx context.Context, doctorID json_types.ID, date json_types.Date) (BookingContext, error) {
	rules, err := s.getRules(ctx, doctorID)
	if err != nil {
		return BookingContext{}, fmt.Errorf("booking.rules.fetch_failed: %w", err)
	}

	appointments, err := s.appointmentPort.ListAppointments(ctx, domain.AppointmentFilter{
		DoctorID: doctorID,
		Date:     &date,
	})
	if err != nil {
		return BookingContext{}, fmt.Errorf("booking.appointments.fetch_failed: %w", err)
	}

	return BookingContext{
		Rules:        rules,
		Appointments: appointments,
		Today:        s.today(),
	}, nil
}

func (s *SchedulingService) today() json_types.Date {
	return json_types.DateOf(s.now().In(s.location))
}

func (s *SchedulingService) reject(operation string, rejection *domain.Rejection) error {
	s.logger.Info(operation+".rejected", out.LogFields{
		"reason":        rejection.Reason,
		"appointmentId": rejection.AppointmentID,
	})
	if s.metricsPort != nil {
		s.metricsPort.ObserveRejection(operation, string(rejection.Reason))
	}
	return rejection
}
