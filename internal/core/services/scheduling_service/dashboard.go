package scheduling_service

import (
	"context"
	"fmt"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// DoctorDashboard сводка по записям врача: предстоящие, сегодняшние,
// ожидающие подтверждения и ближайшая запись
func (s *SchedulingService) DoctorDashboard(ctx context.Context, doctorID json_types.ID) (*domain.DoctorDashboard, error) {
	appointments, err := s.appointmentPort.ListAppointments(ctx, domain.AppointmentFilter{DoctorID: doctorID})
	if err != nil {
		s.logger.Error("dashboard.appointments.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("dashboard.appointments.fetch_failed: %w", err)
	}

	now := s.now().In(s.location)
	today := json_types.DateOf(now)
	nowTime := json_types.NewTime(now.Hour(), now.Minute())

	dashboard := &domain.DoctorDashboard{}
	for i := range appointments {
		appointment := appointments[i]
		if appointment.Status.IsTerminal() {
			continue
		}

		if appointment.Status == domain.AppointmentStatusPending {
			dashboard.Pending++
		}
		if appointment.Date.Before(today) {
			continue
		}

		dashboard.Upcoming++
		if appointment.Date.Equal(today) {
			dashboard.Today++
			if appointment.Time.Before(nowTime) {
				continue
			}
		}

		if dashboard.Next == nil || startsBefore(appointment, *dashboard.Next) {
			dashboard.Next = &appointment
		}
	}

	return dashboard, nil
}

func startsBefore(a, b domain.Appointment) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Time.Before(b.Time)
}
