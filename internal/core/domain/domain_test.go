package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

func validRule() AvailabilityRule {
	return AvailabilityRule{
		DoctorID:            "7",
		DayOfWeek:           WeekdayMonday,
		StartTime:           json_types.NewTime(9, 0),
		EndTime:             json_types.NewTime(12, 0),
		SlotDurationMinutes: 30,
	}
}

func TestAvailabilityRuleValidate(t *testing.T) {
	require.NoError(t, validRule().Validate())

	cases := map[string]func(r *AvailabilityRule){
		"doctor":                func(r *AvailabilityRule) { r.DoctorID = "" },
		"day_of_week":           func(r *AvailabilityRule) { r.DayOfWeek = "Funday" },
		"start_time":            func(r *AvailabilityRule) { r.EndTime = r.StartTime },
		"slot_duration_minutes": func(r *AvailabilityRule) { r.SlotDurationMinutes = 0 },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			rule := validRule()
			mutate(&rule)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, rule.Validate(), &cfgErr)
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}

func TestAvailabilityRuleOverlaps(t *testing.T) {
	a := validRule()
	b := validRule()
	b.StartTime = json_types.NewTime(11, 30)
	b.EndTime = json_types.NewTime(14, 0)
	assert.True(t, a.Overlaps(b))

	b.StartTime = json_types.NewTime(12, 0)
	assert.False(t, a.Overlaps(b), "touching windows do not overlap")

	b.StartTime = json_types.NewTime(10, 0)
	b.DayOfWeek = WeekdayTuesday
	assert.False(t, a.Overlaps(b))
}

func TestWeekdayMatchesAndNormalize(t *testing.T) {
	monday := json_types.NewDate(2024, time.June, 10)

	assert.True(t, WeekdayMonday.Matches(monday))
	assert.False(t, WeekdayTuesday.Matches(monday))
	assert.Equal(t, WeekdayMonday, WeekdayOf(monday))
	assert.Equal(t, WeekdayWednesday, Weekday("  wEDNESDAY ").Normalize())
}

func TestCheckTransition(t *testing.T) {
	appointment := Appointment{ID: "1", DoctorID: "d", PatientID: "p", Status: AppointmentStatusPending}
	doctor := Actor{ID: "d", Role: RoleDoctor}
	patient := Actor{ID: "p", Role: RolePatient}

	assert.Nil(t, CheckTransition(doctor, appointment, AppointmentStatusConfirmed))
	assert.Nil(t, CheckTransition(patient, appointment, AppointmentStatusCanceled))
	assert.Equal(t, ReasonInvalidTransition, CheckTransition(patient, appointment, AppointmentStatusConfirmed).Reason)
	assert.Equal(t, ReasonNotOwner, CheckTransition(Actor{ID: "other", Role: RolePatient}, appointment, AppointmentStatusCanceled).Reason)

	appointment.Status = AppointmentStatusConfirmed
	assert.Nil(t, CheckTransition(doctor, appointment, AppointmentStatusCompleted))
	assert.Equal(t, ReasonInvalidTransition, CheckTransition(patient, appointment, AppointmentStatusCanceled).Reason)

	for _, terminal := range []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCanceled} {
		appointment.Status = terminal
		assert.Equal(t, ReasonInvalidTransition, CheckTransition(doctor, appointment, AppointmentStatusCanceled).Reason)
	}
}

func TestRejectionIsTyped(t *testing.T) {
	err := fmt.Errorf("book: %w", Reject(ReasonSlotAlreadyBooked).WithAppointment("42"))

	assert.True(t, IsRejected(err, ReasonSlotAlreadyBooked))
	assert.False(t, IsRejected(err, ReasonDateInPast))
	assert.False(t, IsRejected(errors.New("boom"), ReasonDateInPast))
	assert.Contains(t, err.Error(), "appointment 42")
	assert.NotEqual(t, string(ReasonNotEditable), ReasonNotEditable.Message())
}

func TestCredentialContext(t *testing.T) {
	_, ok := CredentialFrom(context.Background())
	assert.False(t, ok)

	_, ok = CredentialFrom(WithCredential(context.Background(), Credential{}))
	assert.False(t, ok)

	cred, ok := CredentialFrom(WithCredential(context.Background(), Credential{AccessToken: "abc"}))
	require.True(t, ok)
	assert.Equal(t, "abc", cred.AccessToken)
}

func TestAppointmentFieldsApply(t *testing.T) {
	date := json_types.NewDate(2024, time.June, 11)
	symptoms := "cough"
	updated := AppointmentFields{Date: &date, Symptoms: &symptoms}.Apply(Appointment{Severity: SeverityMild})

	assert.True(t, updated.Date.Equal(date))
	assert.Equal(t, "cough", updated.Symptoms)
	assert.Equal(t, SeverityMild, updated.Severity)
}
