package scheduling_service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

func TestMarkAvailability(t *testing.T) {
	slots := GenerateSlots(rule("1", domain.WeekdayMonday, json_types.NewTime(9, 0), json_types.NewTime(11, 0), 30), monday)
	appointments := []domain.Appointment{
		booked("50", json_types.NewTime(9, 30), domain.AppointmentStatusPending),
		booked("51", json_types.NewTime(10, 0), domain.AppointmentStatusCanceled),
		booked("52", json_types.NewTime(10, 30), domain.AppointmentStatusCompleted),
		// Не на сетке слотов: ничего не занимает
		booked("53", json_types.NewTime(9, 10), domain.AppointmentStatusConfirmed),
	}

	marked := MarkAvailability(slots, appointments)
	require.Len(t, marked, 4)

	available := map[string]bool{}
	for _, slot := range marked {
		available[slot.StartTime.String()] = slot.Available
	}
	assert.Equal(t, map[string]bool{
		"09:00": true,
		"09:30": false,
		"10:00": true,
		"10:30": false,
	}, available)

	// Исходные слоты не меняются
	for _, slot := range slots {
		assert.True(t, slot.Available)
	}
}

func TestMarkAvailabilityIgnoresOtherDoctorsAndDates(t *testing.T) {
	slots := GenerateSlots(rule("1", domain.WeekdayMonday, json_types.NewTime(9, 0), json_types.NewTime(10, 0), 30), monday)

	otherDoctor := booked("50", json_types.NewTime(9, 0), domain.AppointmentStatusPending)
	otherDoctor.DoctorID = "8"
	otherDate := booked("51", json_types.NewTime(9, 30), domain.AppointmentStatusPending)
	otherDate.Date = monday.AddDays(7)

	marked := MarkAvailability(slots, []domain.Appointment{otherDoctor, otherDate})
	assert.Len(t, filterAvailable(marked), 2)
}

func TestBookedSlotIsNeverAvailable(t *testing.T) {
	bc := mondayContext()
	slots := GenerateSlots(bc.Rules[0], monday)

	// Любой слот, занятый активной записью, пропадает из доступных
	for _, slot := range slots {
		appointment := booked("50", slot.StartTime, domain.AppointmentStatusConfirmed)
		for _, s := range filterAvailable(MarkAvailability(slots, []domain.Appointment{appointment})) {
			assert.False(t, s.StartTime.Equal(slot.StartTime))
		}
	}
}
