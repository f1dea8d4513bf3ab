package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carbure/backend/internal/domain/view"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryScopeCache implements ScopeCache using in-memory storage. Entries
// are grouped per scope so invalidation is a single map delete rather than a
// scan. Suitable for single-instance deployments and testing.
type InMemoryScopeCache struct {
	mu      sync.RWMutex
	scopes  map[string]map[string]*scopeEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// scopeEntry wraps a cached payload with its expiration time
type scopeEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e *scopeEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryScopeCacheOption is a functional option for configuring the cache
type InMemoryScopeCacheOption func(*InMemoryScopeCache)

// WithInMemoryTTL sets the default TTL applied when Set receives zero
func WithInMemoryTTL(ttl time.Duration) InMemoryScopeCacheOption {
	return func(c *InMemoryScopeCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryScopeCacheOption {
	return func(c *InMemoryScopeCache) {
		c.logger = logger
	}
}

// NewInMemoryScopeCache creates a new in-memory scope cache
func NewInMemoryScopeCache(opts ...InMemoryScopeCacheOption) *InMemoryScopeCache {
	cache := &InMemoryScopeCache{
		scopes: make(map[string]map[string]*scopeEntry),
		ttl:    defaultScopeTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached payload for a query within a scope
func (c *InMemoryScopeCache) Get(ctx context.Context, scope view.Scope, queryKey string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.scopes[scope.Key()][queryKey]
	c.mu.RUnlock()

	if ok && !entry.isExpired() {
		atomic.AddInt64(&c.hits, 1)
		c.logger.Debug("scope cache hit",
			zap.String("scope", scope.Key()),
			zap.String("query", queryKey))
		return entry.payload, true, nil
	}

	if ok {
		// Expired, remove from cache
		c.mu.Lock()
		delete(c.scopes[scope.Key()], queryKey)
		c.mu.Unlock()
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("scope cache miss",
		zap.String("scope", scope.Key()),
		zap.String("query", queryKey))
	return nil, false, nil
}

// Set stores a payload under the scope
func (c *InMemoryScopeCache) Set(ctx context.Context, scope view.Scope, queryKey string, payload []byte, ttl time.Duration) error {
	if payload == nil {
		return nil
	}

	if ttl == 0 {
		ttl = c.ttl
	}

	entry := &scopeEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}

	c.mu.Lock()
	entries, ok := c.scopes[scope.Key()]
	if !ok {
		entries = make(map[string]*scopeEntry)
		c.scopes[scope.Key()] = entries
	}
	entries[queryKey] = entry
	c.mu.Unlock()

	c.logger.Debug("cached scope entry",
		zap.String("scope", scope.Key()),
		zap.String("query", queryKey),
		zap.Duration("ttl", ttl))
	return nil
}

// Invalidate drops every entry under each of the given scopes
func (c *InMemoryScopeCache) Invalidate(ctx context.Context, scopes []view.Scope) error {
	c.mu.Lock()
	for _, scope := range scopes {
		delete(c.scopes, scope.Key())
	}
	c.mu.Unlock()

	c.logger.Debug("invalidated scopes", zap.Int("count", len(scopes)))
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryScopeCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryScopeCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of live entries in the cache
func (c *InMemoryScopeCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	for _, entries := range c.scopes {
		n += len(entries)
	}
	return n
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryScopeCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

// doCleanup removes expired entries and empty scope buckets
func (c *InMemoryScopeCache) doCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for scopeKey, entries := range c.scopes {
		for queryKey, entry := range entries {
			if entry.isExpired() {
				delete(entries, queryKey)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(c.scopes, scopeKey)
		}
	}

	if removed > 0 {
		c.logger.Debug("cleaned up expired scope cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryScopeCache implements ScopeCache
var _ ScopeCache = (*InMemoryScopeCache)(nil)
