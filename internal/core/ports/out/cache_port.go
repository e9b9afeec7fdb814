package out

import (
	"context"

	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
)

type CachePort interface {
	// Кэширование правил доступности врача
	GetRules(ctx context.Context, doctorID json_types.ID) ([]domain.AvailabilityRule, bool)
	StoreRules(ctx context.Context, doctorID json_types.ID, rules []domain.AvailabilityRule)
	InvalidateRules(ctx context.Context, doctorID json_types.ID)
	InvalidateAllRules(ctx context.Context)
}
