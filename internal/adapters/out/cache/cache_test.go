package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suchimauz/clinic-scheduling-engine/internal/adapters/out/logger"
	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

func testLogger(t *testing.T) out.LoggerPort {
	t.Helper()
	l, err := logger.NewConsoleLoggerWithWriter("UTC", out.LogLevelError, io.Discard)
	require.NoError(t, err)
	return l
}

func mondayRule(id json_types.ID) domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ID:                  id,
		DoctorID:            "7",
		DayOfWeek:           domain.WeekdayMonday,
		StartTime:           json_types.NewTime(9, 0),
		EndTime:             json_types.NewTime(12, 0),
		SlotDurationMinutes: 30,
	}
}

func TestCacheAdapterStoreGetInvalidate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Size = 10
	cfg.Cache.TTL = time.Minute

	c, err := NewCacheAdapter(cfg, testLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := c.GetRules(ctx, "7")
	assert.False(t, ok)

	c.StoreRules(ctx, "7", []domain.AvailabilityRule{mondayRule("1")})
	rules, ok := c.GetRules(ctx, "7")
	require.True(t, ok)
	require.Len(t, rules, 1)

	// Изменение копии не портит кэш
	rules[0].SlotDurationMinutes = 5
	cached, _ := c.GetRules(ctx, "7")
	assert.Equal(t, 30, cached[0].SlotDurationMinutes)

	c.InvalidateRules(ctx, "7")
	_, ok = c.GetRules(ctx, "7")
	assert.False(t, ok)

	c.StoreRules(ctx, "7", nil)
	c.StoreRules(ctx, "8", nil)
	c.InvalidateAllRules(ctx)
	_, ok = c.GetRules(ctx, "8")
	assert.False(t, ok)
}

func TestCacheAdapterRejectsBadSize(t *testing.T) {
	cfg := &config.Config{}
	_, err := NewCacheAdapter(cfg, testLogger(t))
	assert.Error(t, err)
}

func TestCacheAdapterExpiresEntries(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Size = 10
	cfg.Cache.TTL = 20 * time.Millisecond

	c, err := NewCacheAdapter(cfg, testLogger(t))
	require.NoError(t, err)

	c.StoreRules(context.Background(), "7", []domain.AvailabilityRule{mondayRule("1")})
	assert.Eventually(t, func() bool {
		_, ok := c.GetRules(context.Background(), "7")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRedisCacheAdapter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCacheAdapter(client, time.Minute, testLogger(t))
	ctx := context.Background()

	_, ok := c.GetRules(ctx, "7")
	assert.False(t, ok)

	c.StoreRules(ctx, "7", []domain.AvailabilityRule{mondayRule("1")})
	rules, ok := c.GetRules(ctx, "7")
	require.True(t, ok)
	require.Len(t, rules, 1)
	assert.Equal(t, domain.WeekdayMonday, rules[0].DayOfWeek)
	assert.Equal(t, "09:00", rules[0].StartTime.String())
	assert.Equal(t, json_types.ID("1"), rules[0].ID)
	assert.True(t, mr.Exists("scheduling:rules:7"))

	mr.FastForward(2 * time.Minute)
	_, ok = c.GetRules(ctx, "7")
	assert.False(t, ok)

	c.StoreRules(ctx, "7", nil)
	c.StoreRules(ctx, "8", []domain.AvailabilityRule{mondayRule("2")})
	empty, ok := c.GetRules(ctx, "7")
	require.True(t, ok)
	assert.Empty(t, empty)

	c.InvalidateRules(ctx, "7")
	assert.False(t, mr.Exists("scheduling:rules:7"))

	c.InvalidateAllRules(ctx)
	assert.False(t, mr.Exists("scheduling:rules:8"))
}

func TestRedisCacheAdapterDownIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisCacheAdapter(client, time.Minute, testLogger(t))
	mr.Close()

	c.StoreRules(context.Background(), "7", []domain.AvailabilityRule{mondayRule("1")})
	_, ok := c.GetRules(context.Background(), "7")
	assert.False(t, ok)
}
