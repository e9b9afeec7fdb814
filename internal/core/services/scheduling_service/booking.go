package scheduling_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// Book валидирует запрос и создает запись. Проверка валидатора только
// быстрый отказ, уникальность гарантирует условная вставка хранилища.
// При гонке перечитываем записи и валидируем заново один раз
func (s *SchedulingService) Book(ctx context.Context, request domain.BookingRequest) (*domain.Appointment, error) {
	s.logger.Info("booking.started", out.LogFields{
		"doctorId":  request.DoctorID,
		"patientId": request.PatientID,
		"date":      request.Date.String(),
		"time":      request.Time.String(),
	})

	for attempt := 0; ; attempt++ {
		bc, err := s.bookingContext(ctx, request.DoctorID, request.Date)
		if err != nil {
			s.logger.Error("booking.fetch_failed", out.LogFields{
				"doctorId": request.DoctorID,
				"error":    err.Error(),
			})
			s.observeBooking("error")
			return nil, err
		}

		appointment, rejection := ValidateBooking(request, bc)
		if rejection != nil {
			s.observeBooking("rejected")
			return nil, s.reject("booking", rejection)
		}

		created, err := s.appointmentPort.CreateAppointment(ctx, appointment)
		if err == nil {
			s.logger.Info("booking.success", out.LogFields{
				"appointmentId": created.ID,
				"doctorId":      created.DoctorID,
				"attempt":       attempt,
			})
			s.observeBooking("created")
			return created, nil
		}

		if !errors.Is(err, domain.ErrSlotConflict) {
			s.logger.Error("booking.create_failed", out.LogFields{
				"doctorId": request.DoctorID,
				"error":    err.Error(),
			})
			s.observeBooking("error")
			return nil, fmt.Errorf("booking.create_failed: %w", err)
		}

		if attempt >= maxBookingRetries {
			s.observeBooking("rejected")
			return nil, s.reject("booking", domain.Reject(domain.ReasonSlotAlreadyBooked))
		}

		s.logger.Warn("booking.conflict.retry", out.LogFields{
			"doctorId": request.DoctorID,
			"date":     request.Date.String(),
			"time":     request.Time.String(),
		})
		if s.metricsPort != nil {
			s.metricsPort.ObserveStoreRetry("booking")
		}
	}
}

// EditAppointment пациент меняет свою запись, пока она в pending
func (s *SchedulingService) EditAppointment(ctx context.Context, appointmentID json_types.ID, patientID json_types.ID, edit domain.AppointmentEdit) (*domain.Appointment, error) {
	appointment, err := s.appointmentPort.GetAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("appointment.edit.fetch_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, fmt.Errorf("appointment.edit.fetch_failed: %w", err)
	}

	if appointment.PatientID != patientID {
		return nil, s.reject("edit", domain.Reject(domain.ReasonNotOwner).WithAppointment(appointmentID))
	}

	// Статус проверяем до похода за правилами
	if appointment.Status != domain.AppointmentStatusPending {
		return nil, s.reject("edit", domain.Reject(domain.ReasonNotEditable).WithAppointment(appointmentID))
	}

	date := appointment.Date
	if edit.Date != nil {
		date = *edit.Date
	}

	bc, err := s.bookingContext(ctx, appointment.DoctorID, date)
	if err != nil {
		s.logger.Error("appointment.edit.context_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	fields, rejection := ValidateEdit(*appointment, edit, bc)
	if rejection != nil {
		return nil, s.reject("edit", rejection)
	}

	updated, err := s.appointmentPort.UpdateAppointmentFields(ctx, appointmentID, fields)
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			return nil, s.reject("edit", domain.Reject(domain.ReasonSlotAlreadyBooked).WithAppointment(appointmentID))
		}
		s.logger.Error("appointment.edit.update_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, fmt.Errorf("appointment.edit.update_failed: %w", err)
	}

	s.logger.Info("appointment.edit.success", out.LogFields{
		"appointmentId": appointmentID,
		"date":          updated.Date.String(),
		"time":          updated.Time.String(),
	})

	return updated, nil
}

func (s *SchedulingService) Reschedule(ctx context.Context, appointmentID json_types.ID, newDate json_types.Date, newTime json_types.Time, patientID json_types.ID) (*domain.Appointment, error) {
	return s.EditAppointment(ctx, appointmentID, patientID, domain.AppointmentEdit{
		Date: &newDate,
		Time: &newTime,
	})
}

// UpdateStatus переход статуса по таблице разрешенных переходов роли
func (s *SchedulingService) UpdateStatus(ctx context.Context, appointmentID json_types.ID, actor domain.Actor, status domain.AppointmentStatus) (*domain.Appointment, error) {
	appointment, err := s.appointmentPort.GetAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Error("appointment.status.fetch_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, fmt.Errorf("appointment.status.fetch_failed: %w", err)
	}

	if rejection := domain.CheckTransition(actor, *appointment, status); rejection != nil {
		return nil, s.reject("status", rejection)
	}

	updated, err := s.appointmentPort.UpdateAppointmentStatus(ctx, appointmentID, status)
	if err != nil {
		s.logger.Error("appointment.status.update_failed", out.LogFields{
			"appointmentId": appointmentID,
			"status":        status,
			"error":         err.Error(),
		})
		return nil, fmt.Errorf("appointment.status.update_failed: %w", err)
	}

	s.logger.Info("appointment.status.success", out.LogFields{
		"appointmentId": appointmentID,
		"from":          appointment.Status,
		"to":            status,
		"role":          actor.Role,
	})

	return updated, nil
}

func (s *SchedulingService) Cancel(ctx context.Context, appointmentID json_types.ID, actor domain.Actor) (*domain.Appointment, error) {
	return s.UpdateStatus(ctx, appointmentID, actor, domain.AppointmentStatusCanceled)
}

func (s *SchedulingService) observeBooking(outcome string) {
	if s.metricsPort != nil {
		s.metricsPort.ObserveBooking(outcome)
	}
}
