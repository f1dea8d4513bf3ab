package cache

import (
	"context"

	"github.com/carbure/backend/internal/domain/view"
	"go.uber.org/zap"
)

// InvalidationDispatcher receives the scopes a mutation touched and drops
// the corresponding cache regions. A cache failure is logged, never returned:
// a stale listing is acceptable, a rolled-back mutation is not.
type InvalidationDispatcher struct {
	cache  ScopeCache
	logger *zap.Logger
}

// NewInvalidationDispatcher creates a dispatcher over the given cache
func NewInvalidationDispatcher(cache ScopeCache, logger *zap.Logger) *InvalidationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationDispatcher{
		cache:  cache,
		logger: logger,
	}
}

// Dispatch deduplicates the scope lists and invalidates them
func (d *InvalidationDispatcher) Dispatch(ctx context.Context, lists ...[]view.Scope) {
	scopes := view.MergeScopes(lists...)
	if len(scopes) == 0 {
		return
	}

	if err := d.cache.Invalidate(ctx, scopes); err != nil {
		d.logger.Warn("scope invalidation failed",
			zap.Int("scopes", len(scopes)),
			zap.Error(err),
		)
		return
	}

	d.logger.Debug("invalidated mutation scopes", zap.Int("scopes", len(scopes)))
}
