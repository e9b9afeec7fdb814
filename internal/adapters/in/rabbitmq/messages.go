package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

type (
	CacheHitType         string
	CacheHitResourceType string
)

const (
	CacheHitResourceTypeAll          CacheHitResourceType = "_all_"
	CacheHitResourceTypeAvailability CacheHitResourceType = "availability"
	CacheHitResourceTypeAppointment  CacheHitResourceType = "appointment"
)

const (
	CacheHitTypeStore      CacheHitType = "store"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	CacheHitType CacheHitType
}

// CacheAvailabilityMessage тело события об изменении правила доступности
type CacheAvailabilityMessage struct {
	ID       json_types.ID `json:"id"`
	DoctorID json_types.ID `json:"doctor"`
}

// Пример routingKey:
// clinic.scheduling-engine.availability.invalidate
// clinic.scheduling-engine.availability.store
// clinic.scheduling-engine._all_.invalidate
func parseCacheMessageRoutingKey(routingKey string) (CacheMessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")
	if len(parts) != 4 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(strings.ToLower(parts[2])),
		CacheHitType: CacheHitType(strings.ToLower(parts[3])),
	}, nil
}

// processMessage обрабатывает одно событие. Ошибка означает, что
// сообщение не разобрать и повторная доставка не поможет
func (l *CacheHitListener) processMessage(ctx context.Context, routingKey string, body []byte) error {
	key, err := parseCacheMessageRoutingKey(routingKey)
	if err != nil {
		return err
	}

	switch key.ResourceType {
	case CacheHitResourceTypeAll:
		if key.CacheHitType != CacheHitTypeInvalidate {
			return nil
		}
		l.invalidator.InvalidateAllRules(ctx)
		l.logger.Info("_all_.message.invalidated", out.LogFields{
			"source": key.Source,
		})
		return nil

	case CacheHitResourceTypeAvailability:
		var msg CacheAvailabilityMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message: %w", err)
		}
		if msg.DoctorID.IsEmpty() {
			return fmt.Errorf("availability message %s has no doctor", msg.ID)
		}

		// Правило изменилось или создано в обход движка: следующий
		// запрос перечитает его из бэкенда
		l.invalidator.InvalidateDoctorRules(ctx, msg.DoctorID)
		l.logger.Info("availability.message.invalidated", out.LogFields{
			"ruleId":       msg.ID,
			"doctorId":     msg.DoctorID,
			"cacheHitType": string(key.CacheHitType),
		})
		return nil
	}

	// Записи не кэшируются, их события только логируем
	l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
		"routingKey":   routingKey,
		"resourceType": string(key.ResourceType),
	})
	return nil
}
