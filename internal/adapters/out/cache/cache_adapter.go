package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

type rulesCache struct {
	mu    sync.RWMutex
	cache *expirable.LRU[json_types.ID, []domain.AvailabilityRule]
}

// CacheAdapter кэш правил доступности в памяти процесса
type CacheAdapter struct {
	rulesCache *rulesCache
	logger     out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if cfg.Cache.Size <= 0 {
		logger.Error("cache.rules.init.failed", out.LogFields{
			"size": cfg.Cache.Size,
		})
		return nil, errors.New("cache size must be positive")
	}

	return &CacheAdapter{
		rulesCache: &rulesCache{
			cache: expirable.NewLRU[json_types.ID, []domain.AvailabilityRule](cfg.Cache.Size, nil, cfg.Cache.TTL),
		},
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, bool) {
	c.rulesCache.mu.RLock()
	defer c.rulesCache.mu.RUnlock()

	rules, exists := c.rulesCache.cache.Get(doctorID)
	if !exists {
		return nil, false
	}

	c.logger.Debug("cache.rules.get.hit", out.LogFields{
		"doctorId":   doctorID,
		"rulesCount": len(rules),
	})

	// Отдаем копию, чтобы вызывающий не испортил кэш
	return append([]domain.AvailabilityRule(nil), rules...), true
}

func (c *CacheAdapter) StoreRules(ctx context.Context, doctorID json_types.ID, rules []domain.AvailabilityRule) {
	c.rulesCache.mu.Lock()
	defer c.rulesCache.mu.Unlock()

	c.logger.Debug("cache.rules.store", out.LogFields{
		"doctorId":   doctorID,
		"rulesCount": len(rules),
	})

	c.rulesCache.cache.Add(doctorID, append([]domain.AvailabilityRule(nil), rules...))
}

func (c *CacheAdapter) InvalidateRules(ctx context.Context, doctorID json_types.ID) {
	c.rulesCache.mu.Lock()
	defer c.rulesCache.mu.Unlock()

	c.rulesCache.cache.Remove(doctorID)
}

func (c *CacheAdapter) InvalidateAllRules(ctx context.Context) {
	c.rulesCache.mu.Lock()
	defer c.rulesCache.mu.Unlock()

	c.rulesCache.cache.Purge()
}
