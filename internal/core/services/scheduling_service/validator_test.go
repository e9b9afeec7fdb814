package scheduling_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

func mondayContext(appointments ...domain.Appointment) BookingContext {
	return BookingContext{
		Rules: []domain.AvailabilityRule{
			rule("1", domain.WeekdayMonday, json_types.NewTime(9, 0), json_types.NewTime(12, 0), 30),
		},
		Appointments: appointments,
		Today:        monday.AddDays(-6),
	}
}

func request(date json_types.Date, t json_types.Time, severity domain.Severity) domain.BookingRequest {
	return domain.BookingRequest{
		DoctorID:  "7",
		PatientID: "3",
		Date:      date,
		Time:      t,
		Severity:  severity,
		Symptoms:  "cough",
	}
}

func booked(id json_types.ID, t json_types.Time, status domain.AppointmentStatus) domain.Appointment {
	return domain.Appointment{
		ID:        id,
		DoctorID:  "7",
		PatientID: "9",
		Date:      monday,
		Time:      t,
		Severity:  domain.SeverityMild,
		Status:    status,
	}
}

func TestValidateBookingAccepts(t *testing.T) {
	appointment, rejection := ValidateBooking(request(monday, json_types.NewTime(9, 30), domain.SeverityModerate), mondayContext())
	require.Nil(t, rejection)
	assert.Equal(t, domain.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, 30, appointment.DurationMinutes)
	assert.Equal(t, "cough", appointment.Symptoms)
	assert.True(t, appointment.ID.IsEmpty())
}

func TestValidateBookingReasons(t *testing.T) {
	cases := []struct {
		name    string
		request domain.BookingRequest
		bc      BookingContext
		reason  domain.RejectionReason
	}{
		{
			name:    "time not on grid",
			request: request(monday, json_types.NewTime(9, 15), domain.SeverityMild),
			bc:      mondayContext(),
			reason:  domain.ReasonSlotNotOffered,
		},
		{
			name:    "wrong weekday",
			request: request(monday.AddDays(1), json_types.NewTime(9, 0), domain.SeverityMild),
			bc:      mondayContext(),
			reason:  domain.ReasonSlotNotOffered,
		},
		{
			name:    "slot taken",
			request: request(monday, json_types.NewTime(9, 0), domain.SeverityMild),
			bc:      mondayContext(booked("50", json_types.NewTime(9, 0), domain.AppointmentStatusConfirmed)),
			reason:  domain.ReasonSlotAlreadyBooked,
		},
		{
			name:    "date in past",
			request: request(monday, json_types.NewTime(9, 0), domain.SeverityMild),
			bc:      BookingContext{Rules: mondayContext().Rules, Today: monday.AddDays(1)},
			reason:  domain.ReasonDateInPast,
		},
		{
			name:    "unknown severity",
			request: request(monday, json_types.NewTime(9, 0), domain.Severity("critical")),
			bc:      mondayContext(),
			reason:  domain.ReasonInvalidSeverity,
		},
		{
			// Несколько нарушений сразу: побеждает первое по порядку проверок
			name:    "not offered beats past and severity",
			request: request(monday, json_types.NewTime(8, 0), domain.Severity("")),
			bc:      BookingContext{Rules: mondayContext().Rules, Today: monday.AddDays(1)},
			reason:  domain.ReasonSlotNotOffered,
		},
		{
			name:    "taken beats past",
			request: request(monday, json_types.NewTime(9, 0), domain.SeverityMild),
			bc: BookingContext{
				Rules:        mondayContext().Rules,
				Appointments: []domain.Appointment{booked("50", json_types.NewTime(9, 0), domain.AppointmentStatusPending)},
				Today:        monday.AddDays(1),
			},
			reason: domain.ReasonSlotAlreadyBooked,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rejection := ValidateBooking(tc.request, tc.bc)
			require.NotNil(t, rejection)
			assert.Equal(t, tc.reason, rejection.Reason)
		})
	}
}

func TestValidateBookingNamesConflictingAppointment(t *testing.T) {
	bc := mondayContext(booked("50", json_types.NewTime(10, 0), domain.AppointmentStatusPending))

	_, rejection := ValidateBooking(request(monday, json_types.NewTime(10, 0), domain.SeverityMild), bc)
	require.NotNil(t, rejection)
	assert.Equal(t, json_types.ID("50"), rejection.AppointmentID)
}

func TestValidateBookingIgnoresCanceled(t *testing.T) {
	bc := mondayContext(booked("50", json_types.NewTime(10, 0), domain.AppointmentStatusCanceled))

	_, rejection := ValidateBooking(request(monday, json_types.NewTime(10, 0), domain.SeverityMild), bc)
	assert.Nil(t, rejection)
}

func TestValidateBookingTodayIsNotPast(t *testing.T) {
	bc := mondayContext()
	bc.Today = monday

	_, rejection := ValidateBooking(request(monday, json_types.NewTime(9, 0), domain.SeverityMild), bc)
	assert.Nil(t, rejection)
}

func TestValidateEditOnlyPending(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{
		domain.AppointmentStatusConfirmed,
		domain.AppointmentStatusCompleted,
		domain.AppointmentStatusCanceled,
	} {
		appointment := booked("50", json_types.NewTime(9, 0), status)
		symptoms := "better"

		_, rejection := ValidateEdit(appointment, domain.AppointmentEdit{Symptoms: &symptoms}, mondayContext())
		require.NotNil(t, rejection, status)
		assert.Equal(t, domain.ReasonNotEditable, rejection.Reason)
		assert.Equal(t, json_types.ID("50"), rejection.AppointmentID)
	}
}

func TestValidateEditDoesNotConflictWithItself(t *testing.T) {
	appointment := booked("50", json_types.NewTime(9, 0), domain.AppointmentStatusPending)
	severe := domain.SeveritySevere

	fields, rejection := ValidateEdit(appointment, domain.AppointmentEdit{Severity: &severe}, mondayContext(appointment))
	require.Nil(t, rejection)
	assert.Equal(t, domain.SeveritySevere, *fields.Severity)
	assert.Equal(t, "09:00", fields.Time.String())
	assert.Equal(t, 30, *fields.DurationMinutes)
}

func TestValidateEditMoveChecksOtherAppointments(t *testing.T) {
	appointment := booked("50", json_types.NewTime(9, 0), domain.AppointmentStatusPending)
	other := booked("51", json_types.NewTime(9, 30), domain.AppointmentStatusPending)
	moveTo := json_types.NewTime(9, 30)

	_, rejection := ValidateEdit(appointment, domain.AppointmentEdit{Time: &moveTo}, mondayContext(appointment, other))
	require.NotNil(t, rejection)
	assert.Equal(t, domain.ReasonSlotAlreadyBooked, rejection.Reason)
	assert.Equal(t, json_types.ID("51"), rejection.AppointmentID)

	freeTime := json_types.NewTime(11, 30)
	fields, rejection := ValidateEdit(appointment, domain.AppointmentEdit{Time: &freeTime}, mondayContext(appointment, other))
	require.Nil(t, rejection)
	assert.Equal(t, "11:30", fields.Time.String())
}
