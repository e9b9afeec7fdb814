package scheduling_service

import (
	"context"
	"fmt"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

func (s *SchedulingService) ListAvailabilityRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, error) {
	rules, err := s.getRules(ctx, doctorID)
	if err != nil {
		s.logger.Error("rules.list.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("rules.list.fetch_failed: %w", err)
	}
	return rules, nil
}

// AddAvailabilityRule создает правило. Пересечение с существующими
// правилами не запрещено, но возвращается предупреждением
func (s *SchedulingService) AddAvailabilityRule(ctx context.Context, rule domain.AvailabilityRule) (*domain.AvailabilityRule, []domain.RuleWarning, error) {
	rule.ID = ""
	rule.DayOfWeek = rule.DayOfWeek.Normalize()

	if err := rule.Validate(); err != nil {
		s.logger.Info("rules.create.invalid", out.LogFields{
			"doctorId": rule.DoctorID,
			"error":    err.Error(),
		})
		return nil, nil, err
	}

	existing, err := s.getRules(ctx, rule.DoctorID)
	if err != nil {
		s.logger.Error("rules.create.fetch_failed", out.LogFields{
			"doctorId": rule.DoctorID,
			"error":    err.Error(),
		})
		return nil, nil, fmt.Errorf("rules.create.fetch_failed: %w", err)
	}

	warnings := make([]domain.RuleWarning, 0)
	for _, other := range existing {
		if rule.Overlaps(other) {
			warnings = append(warnings, domain.RuleWarning{
				Code:   domain.RuleWarningOverlap,
				RuleID: other.ID,
			})
		}
	}

	created, err := s.availabilityPort.CreateRule(ctx, rule)
	if err != nil {
		s.logger.Error("rules.create.failed", out.LogFields{
			"doctorId": rule.DoctorID,
			"error":    err.Error(),
		})
		return nil, nil, fmt.Errorf("rules.create.failed: %w", err)
	}

	s.InvalidateDoctorRules(ctx, rule.DoctorID)

	s.logger.Info("rules.create.success", out.LogFields{
		"doctorId": rule.DoctorID,
		"ruleId":   created.ID,
		"warnings": len(warnings),
	})

	return created, warnings, nil
}

// RemoveAvailabilityRule удаляет правило врача. Чужое правило не найдется
func (s *SchedulingService) RemoveAvailabilityRule(ctx context.Context, doctorID json_types.ID, ruleID json_types.ID) error {
	// Мимо кэша: правило могли создать в обход движка
	rules, err := s.availabilityPort.ListRules(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("rules.delete.fetch_failed: %w", err)
	}

	owned := false
	for _, rule := range rules {
		if rule.ID == ruleID && rule.DoctorID == doctorID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("rule %s of doctor %s: %w", ruleID, doctorID, domain.ErrNotFound)
	}

	if err := s.availabilityPort.DeleteRule(ctx, ruleID); err != nil {
		s.logger.Error("rules.delete.failed", out.LogFields{
			"doctorId": doctorID,
			"ruleId":   ruleID,
			"error":    err.Error(),
		})
		return fmt.Errorf("rules.delete.failed: %w", err)
	}

	s.InvalidateDoctorRules(ctx, doctorID)

	s.logger.Info("rules.delete.success", out.LogFields{
		"doctorId": doctorID,
		"ruleId":   ruleID,
	})

	return nil
}
