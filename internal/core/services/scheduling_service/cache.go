package scheduling_service

import (
	"context"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

// getRules правила врача, из кэша если он включен
func (s *SchedulingService) getRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error) {
	if s.cachePort != nil {
		if rules, exists := s.cachePort.GetRules(ctx, doctorID); exists {
			return rules, nil
		}
		s.logger.Debug("rules.cache.miss", out.LogFields{
			"doctorId": doctorID,
		})
	}

	rules, err := s.availabilityPort.ListRules(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	// Бэкенд может отдать правила всех врачей пользователя
	own := make([]domain.AvailabilityRule, 0, len(rules))
	for _, rule := range rules {
		if rule.DoctorID == doctorID {
			own = append(own, rule)
		}
	}

	if s.cachePort != nil {
		s.cachePort.StoreRules(ctx, doctorID, own)
	}

	return own, nil
}

func (s *SchedulingService) InvalidateDoctorRules(ctx context.Context, doctorID json_types.ID) {
	if s.cachePort == nil {
		return
	}
	s.cachePort.InvalidateRules(ctx, doctorID)
}

func (s *SchedulingService) InvalidateAllRules(ctx context.Context) {
	if s.cachePort == nil {
		return
	}
	s.cachePort.InvalidateAllRules(ctx)
}
