package memory

import (
	"context"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

var monday = json_types.NewDate(2030, time.January, 7)

func newAdapter(t *testing.T) *MemoryAdapter {
	t.Helper()
	log, err := logger.NewConsoleLoggerWithWriter("UTC", out.LogLevelError, io.Discard)
	require.NoError(t, err)
	return NewMemoryAdapter(log)
}

func pending(patientID json_types.ID, t json_types.Time) domain.Appointment {
	return domain.Appointment{
		DoctorID:  "7",
		PatientID: patientID,
		Date:      monday,
		Time:      t,
		Severity:  domain.SeverityMild,
		Status:    domain.AppointmentStatusPending,
	}
}

func TestConcurrentInsertsOnlyOneWins(t *testing.T) {
	m := newAdapter(t)

	const clients = 20
	var wg sync.WaitGroup
	results := make(chan error, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.CreateAppointment(context.Background(), pending(json_types.ID(strconv.Itoa(i)), json_types.NewTime(9, 0)))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	created, conflicts := 0, 0
	for err := range results {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotConflict)
		conflicts++
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, clients-1, conflicts)

	appointments, err := m.ListAppointments(context.Background(), domain.AppointmentFilter{DoctorID: "7"})
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
}

func TestCanceledAppointmentFreesSlot(t *testing.T) {
	m := newAdapter(t)
	ctx := context.Background()

	first, err := m.CreateAppointment(ctx, pending("3", json_types.NewTime(9, 0)))
	require.NoError(t, err)

	_, err = m.UpdateAppointmentStatus(ctx, first.ID, domain.AppointmentStatusCanceled)
	require.NoError(t, err)

	_, err = m.CreateAppointment(ctx, pending("4", json_types.NewTime(9, 0)))
	assert.NoError(t, err)
}

func TestUpdateFieldsChecksUniqueness(t *testing.T) {
	m := newAdapter(t)
	ctx := context.Background()

	first, err := m.CreateAppointment(ctx, pending("3", json_types.NewTime(9, 0)))
	require.NoError(t, err)
	_, err = m.CreateAppointment(ctx, pending("4", json_types.NewTime(9, 30)))
	require.NoError(t, err)

	taken := json_types.NewTime(9, 30)
	_, err = m.UpdateAppointmentFields(ctx, first.ID, domain.AppointmentFields{Time: &taken})
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	// Перезапись своего же слота не конфликт
	same := json_types.NewTime(9, 0)
	symptoms := "fever"
	updated, err := m.UpdateAppointmentFields(ctx, first.ID, domain.AppointmentFields{Time: &same, Symptoms: &symptoms})
	require.NoError(t, err)
	assert.Equal(t, "fever", updated.Symptoms)

	stored, err := m.GetAppointment(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.Time.String())
}

func TestMissingRecordsAreNotFound(t *testing.T) {
	m := newAdapter(t)
	ctx := context.Background()

	_, err := m.GetAppointment(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = m.UpdateAppointmentStatus(ctx, "nope", domain.AppointmentStatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, m.DeleteRule(ctx, "nope"), domain.ErrNotFound)
}

func TestRulesKeepInsertionOrder(t *testing.T) {
	m := newAdapter(t)
	ctx := context.Background()

	for _, doctorID := range []json_types.ID{"7", "8", "7"} {
		_, err := m.CreateRule(ctx, domain.AvailabilityRule{
			DoctorID:            doctorID,
			DayOfWeek:           domain.WeekdayMonday,
			StartTime:           json_types.NewTime(9, 0),
			EndTime:             json_types.NewTime(10, 0),
			SlotDurationMinutes: 30,
		})
		require.NoError(t, err)
	}

	rules, err := m.ListRules(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	all, err := m.ListRules(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, json_types.ID("8"), all[1].DoctorID)

	require.NoError(t, m.DeleteRule(ctx, all[1].ID))
	all, err = m.ListRules(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
