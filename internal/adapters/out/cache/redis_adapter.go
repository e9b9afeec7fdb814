package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

const rulesKeyPrefix = "scheduling:rules:"

// RedisCacheAdapter общий кэш правил для нескольких экземпляров движка.
// Ошибки Redis не ломают запрос: промах и запись в лог
type RedisCacheAdapter struct {
	client *redis.Client
	ttl    time.Duration
	logger out.LoggerPort
}

func NewRedisCacheAdapter(client *redis.Client, ttl time.Duration, logger out.LoggerPort) *RedisCacheAdapter {
	return &RedisCacheAdapter{
		client: client,
		ttl:    ttl,
		logger: logger.WithModule("RedisCacheAdapter"),
	}
}

func rulesKey(doctorID json_types.ID) string {
	return rulesKeyPrefix + doctorID.String()
}

func (c *RedisCacheAdapter) GetRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, bool) {
	data, err := c.client.Get(ctx, rulesKey(doctorID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache.redis.get_failed", out.LogFields{
				"doctorId": doctorID,
				"error":    err.Error(),
			})
		}
		return nil, false
	}

	var rules []domain.AvailabilityRule
	if err := json.Unmarshal(data, &rules); err != nil {
		c.logger.Warn("cache.redis.decode_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, false
	}

	return rules, true
}

func (c *RedisCacheAdapter) StoreRules(ctx context.Context, doctorID json_types.ID, rules []domain.AvailabilityRule) {
	if rules == nil {
		rules = []domain.AvailabilityRule{}
	}

	data, err := json.Marshal(rules)
	if err != nil {
		c.logger.Warn("cache.redis.encode_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, rulesKey(doctorID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache.redis.set_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateRules(ctx context.Context, doctorID json_types.ID) {
	if err := c.client.Del(ctx, rulesKey(doctorID)).Err(); err != nil {
		c.logger.Warn("cache.redis.del_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
	}
}

func (c *RedisCacheAdapter) InvalidateAllRules(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, rulesKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("cache.redis.del_failed", out.LogFields{
				"key":   iter.Val(),
				"error": err.Error(),
			})
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache.redis.scan_failed", out.LogFields{
			"error": err.Error(),
		})
	}
}
