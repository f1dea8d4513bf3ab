package cache

import (
	"context"
	"time"

	"github.com/carbure/backend/internal/domain/view"
)

// Default TTL applied when the caller passes zero
const defaultScopeTTL = 5 * time.Minute

// ScopeCache stores marshaled listing and snapshot responses. Entries are
// keyed by the scope prefix (entity, year, status tab) plus the query
// identity within it, so a mutation can drop every page of a scope it
// touched without knowing which pages were ever requested.
type ScopeCache interface {
	// Get returns the cached payload for a query, or found=false on a miss
	Get(ctx context.Context, scope view.Scope, queryKey string) (payload []byte, found bool, err error)

	// Set stores a payload under the scope. A zero ttl uses the default.
	Set(ctx context.Context, scope view.Scope, queryKey string, payload []byte, ttl time.Duration) error

	// Invalidate drops every entry under each of the given scopes
	Invalidate(ctx context.Context, scopes []view.Scope) error

	// Close releases any resources held by the cache
	Close() error
}
