package scheduling_service

import (
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// BookingContext все, что нужно валидатору: правила врача, его записи
// на дату и "сегодня" в таймзоне движка
type BookingContext struct {
	Rules        []domain.AvailabilityRule
	Appointments []domain.Appointment
	Today        json_types.Date
}

// ValidateBooking проверяет запрос на запись, первая ошибка побеждает:
// слот предлагается, слот свободен, дата не в прошлом, тяжесть корректна.
// Возвращает нормализованную запись в статусе pending
func ValidateBooking(request domain.BookingRequest, bc BookingContext) (domain.Appointment, *domain.Rejection) {
	rule, rejection := validateSlot(request, bc, "")
	if rejection != nil {
		return domain.Appointment{}, rejection
	}

	return domain.Appointment{
		DoctorID:        request.DoctorID,
		PatientID:       request.PatientID,
		Date:            request.Date,
		Time:            request.Time,
		DurationMinutes: rule.SlotDurationMinutes,
		Severity:        request.Severity,
		Symptoms:        request.Symptoms,
		Status:          domain.AppointmentStatusPending,
	}, nil
}

// ValidateEdit те же проверки, что и при записи, но редактируемая запись
// не конфликтует сама с собой и редактировать можно только pending
func ValidateEdit(appointment domain.Appointment, edit domain.AppointmentEdit, bc BookingContext) (domain.AppointmentFields, *domain.Rejection) {
	if appointment.Status != domain.AppointmentStatusPending {
		return domain.AppointmentFields{}, domain.Reject(domain.ReasonNotEditable).WithAppointment(appointment.ID)
	}

	request := domain.BookingRequest{
		DoctorID:  appointment.DoctorID,
		PatientID: appointment.PatientID,
		Date:      appointment.Date,
		Time:      appointment.Time,
		Severity:  appointment.Severity,
		Symptoms:  appointment.Symptoms,
	}
	if edit.Date != nil {
		request.Date = *edit.Date
	}
	if edit.Time != nil {
		request.Time = *edit.Time
	}
	if edit.Severity != nil {
		request.Severity = *edit.Severity
	}
	if edit.Symptoms != nil {
		request.Symptoms = *edit.Symptoms
	}

	rule, rejection := validateSlot(request, bc, appointment.ID)
	if rejection != nil {
		return domain.AppointmentFields{}, rejection
	}

	duration := rule.SlotDurationMinutes
	return domain.AppointmentFields{
		Date:            &request.Date,
		Time:            &request.Time,
		DurationMinutes: &duration,
		Severity:        &request.Severity,
		Symptoms:        &request.Symptoms,
	}, nil
}

func validateSlot(request domain.BookingRequest, bc BookingContext, excludeID json_types.ID) (domain.AvailabilityRule, *domain.Rejection) {
	rule, offered := findOfferingRule(bc.Rules, request.DoctorID, request.Date, request.Time)
	if !offered {
		return domain.AvailabilityRule{}, domain.Reject(domain.ReasonSlotNotOffered)
	}

	for _, existing := range bc.Appointments {
		if !excludeID.IsEmpty() && existing.ID == excludeID {
			continue
		}
		if existing.Occupies(request.DoctorID, request.Date, request.Time) {
			return domain.AvailabilityRule{}, domain.Reject(domain.ReasonSlotAlreadyBooked).WithAppointment(existing.ID)
		}
	}

	if request.Date.Before(bc.Today) {
		return domain.AvailabilityRule{}, domain.Reject(domain.ReasonDateInPast)
	}

	if !request.Severity.IsValid() {
		return domain.AvailabilityRule{}, domain.Reject(domain.ReasonInvalidSeverity)
	}

	return rule, nil
}
