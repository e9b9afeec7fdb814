package scheduling_service

import "github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"

// sortByStart упорядочивает слоты по времени начала
func sortByStart(slots []domain.Slot) []domain.Slot {
	return stableQuickSort(slots, func(a, b domain.Slot) int {
		return a.StartTime.Minutes() - b.StartTime.Minutes()
	})
}

// stableQuickSort трехпутевая быстрая сортировка, равные элементы
// сохраняют исходный порядок. Вход не изменяется
func stableQuickSort[T any](items []T, compare func(a, b T) int) []T {
	if len(items) < 2 {
		return items
	}

	pivot := items[len(items)/2]
	var before, same, after []T
	for _, item := range items {
		switch c := compare(item, pivot); {
		case c < 0:
			before = append(before, item)
		case c > 0:
			after = append(after, item)
		default:
			same = append(same, item)
		}
	}

	sorted := make([]T, 0, len(items))
	sorted = append(sorted, stableQuickSort(before, compare)...)
	sorted = append(sorted, same...)
	return append(sorted, stableQuickSort(after, compare)...)
}
