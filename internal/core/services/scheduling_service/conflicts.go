package scheduling_service

import (
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
)

// MarkAvailability помечает занятые слоты. Совпадение только по точному
// времени начала: слоты одного правила выровнены по длительности и не
// пересекаются. Исходный слайс не меняется
func MarkAvailability(slots []domain.Slot, appointments []domain.Appointment) []domain.Slot {
	marked := make([]domain.Slot, len(slots))

	for i, slot := range slots {
		slot.Available = true
		for _, appointment := range appointments {
			if appointment.Occupies(slot.DoctorID, slot.Date, slot.StartTime) {
				slot.Available = false
				break
			}
		}
		marked[i] = slot
	}

	return marked
}

func filterAvailable(slots []domain.Slot) []domain.Slot {
	available := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			available = append(available, slot)
		}
	}
	return available
}
