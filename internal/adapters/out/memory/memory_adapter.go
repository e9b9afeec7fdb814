package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// MemoryAdapter хранилище правил и записей в памяти процесса. Уникальность
// (doctor, date, time) среди не отмененных записей проверяется и
// применяется под одной блокировкой, как условная вставка в БД
type MemoryAdapter struct {
	mu           sync.RWMutex
	rules        map[json_types.ID]domain.AvailabilityRule
	ruleOrder    []json_types.ID
	appointments map[json_types.ID]domain.Appointment
	order        []json_types.ID
	logger       out.LoggerPort
}

func NewMemoryAdapter(logger out.LoggerPort) *MemoryAdapter {
	return &MemoryAdapter{
		rules:        make(map[json_types.ID]domain.AvailabilityRule),
		appointments: make(map[json_types.ID]domain.Appointment),
		logger:       logger.WithModule("MemoryAdapter"),
	}
}

func newID() json_types.ID {
	return json_types.ID(uuid.NewString())
}

// Правила доступности

func (m *MemoryAdapter) ListRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make([]domain.AvailabilityRule, 0)
	for _, id := range m.ruleOrder {
		rule := m.rules[id]
		if doctorID.IsEmpty() || rule.DoctorID == doctorID {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func (m *MemoryAdapter) CreateRule(ctx context.Context, rule domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule.ID = newID()
	m.rules[rule.ID] = rule
	m.ruleOrder = append(m.ruleOrder, rule.ID)

	m.logger.Debug("memory.rule.created", out.LogFields{
		"ruleId":   rule.ID,
		"doctorId": rule.DoctorID,
	})

	return &rule, nil
}

func (m *MemoryAdapter) DeleteRule(ctx context.Context, ruleID json_types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rules[ruleID]; !exists {
		return fmt.Errorf("rule %s: %w", ruleID, domain.ErrNotFound)
	}

	delete(m.rules, ruleID)
	for i, id := range m.ruleOrder {
		if id == ruleID {
			m.ruleOrder = append(m.ruleOrder[:i], m.ruleOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Записи на прием

func (m *MemoryAdapter) ListAppointments(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	appointments := make([]domain.Appointment, 0)
	for _, id := range m.order {
		appointment := m.appointments[id]
		if filter.Matches(appointment) {
			appointments = append(appointments, appointment)
		}
	}
	return appointments, nil
}

func (m *MemoryAdapter) GetAppointment(ctx context.Context, appointmentID json_types.ID) (*domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	appointment, exists := m.appointments[appointmentID]
	if !exists {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrNotFound)
	}
	return &appointment, nil
}

func (m *MemoryAdapter) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conflictID, taken := m.occupied(appointment, ""); taken {
		m.logger.Debug("memory.appointment.conflict", out.LogFields{
			"conflictId": conflictID,
			"doctorId":   appointment.DoctorID,
		})
		return nil, fmt.Errorf("appointment %s occupies slot: %w", conflictID, domain.ErrSlotConflict)
	}

	appointment.ID = newID()
	m.appointments[appointment.ID] = appointment
	m.order = append(m.order, appointment.ID)

	return &appointment, nil
}

func (m *MemoryAdapter) UpdateAppointmentStatus(ctx context.Context, appointmentID json_types.ID, status domain.AppointmentStatus) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appointment, exists := m.appointments[appointmentID]
	if !exists {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrNotFound)
	}

	appointment.Status = status
	m.appointments[appointmentID] = appointment
	return &appointment, nil
}

func (m *MemoryAdapter) UpdateAppointmentFields(ctx context.Context, appointmentID json_types.ID, fields domain.AppointmentFields) (*domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appointment, exists := m.appointments[appointmentID]
	if !exists {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, domain.ErrNotFound)
	}

	updated := fields.Apply(appointment)
	if conflictID, taken := m.occupied(updated, appointmentID); taken {
		return nil, fmt.Errorf("appointment %s occupies slot: %w", conflictID, domain.ErrSlotConflict)
	}

	m.appointments[appointmentID] = updated
	return &updated, nil
}

// occupied вызывается под блокировкой
func (m *MemoryAdapter) occupied(candidate domain.Appointment, excludeID json_types.ID) (json_types.ID, bool) {
	if candidate.Status == domain.AppointmentStatusCanceled {
		return "", false
	}
	for id, existing := range m.appointments {
		if id == excludeID {
			continue
		}
		if existing.Occupies(candidate.DoctorID, candidate.Date, candidate.Time) {
			return id, true
		}
	}
	return "", false
}
