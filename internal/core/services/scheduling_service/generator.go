package scheduling_service

import (
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

// GenerateSlots разворачивает правило в слоты на дату.
// Если день недели даты не совпадает с правилом, слотов нет
func GenerateSlots(rule domain.AvailabilityRule, date json_types.Date) []domain.Slot {
	slots := make([]domain.Slot, 0)

	if !rule.DayOfWeek.Matches(date) {
		return slots
	}

	// Некорректные правила отсекаются при создании, здесь просто не генерируем
	if rule.SlotDurationMinutes <= 0 {
		return slots
	}

	end := rule.EndTime.Minutes()
	for cursor := rule.StartTime.Minutes(); cursor+rule.SlotDurationMinutes <= end; cursor += rule.SlotDurationMinutes {
		slots = append(slots, domain.Slot{
			DoctorID:  rule.DoctorID,
			RuleID:    rule.ID,
			Date:      date,
			StartTime: json_types.TimeFromMinutes(cursor),
			EndTime:   json_types.TimeFromMinutes(cursor + rule.SlotDurationMinutes),
			Available: true,
		})
	}

	return slots
}

// generateDaySlots склеивает слоты всех правил врача на дату.
// Правила могут пересекаться, слот с уже встреченным временем начала
// отбрасывается, остается слот правила, идущего раньше
func generateDaySlots(rules []domain.AvailabilityRule, date json_types.Date) []domain.Slot {
	slots := make([]domain.Slot, 0)
	seen := make(map[int]struct{})

	for _, rule := range rules {
		for _, slot := range GenerateSlots(rule, date) {
			key := slot.StartTime.Minutes()
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, slot)
		}
	}

	return sortByStart(slots)
}

// findOfferingRule правило, которое предлагает слот с началом в t на дату
func findOfferingRule(rules []domain.AvailabilityRule, doctorID json_types.ID, date json_types.Date, t json_types.Time) (domain.AvailabilityRule, bool) {
	for _, rule := range rules {
		if rule.DoctorID != doctorID {
			continue
		}
		for _, slot := range GenerateSlots(rule, date) {
			if slot.StartTime.Equal(t) {
				return rule, true
			}
		}
	}
	return domain.AvailabilityRule{}, false
}
