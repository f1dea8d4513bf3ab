package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/carbure/backend/internal/domain/view"
	"github.com/redis/go-redis/v9"
)

// RedisScopeCache implements ScopeCache using Redis. Suitable for
// deployments where several instances should share listing state.
type RedisScopeCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisScopeCache creates a new Redis-based scope cache
func NewRedisScopeCache(cfg RedisConfig, ttl time.Duration) (*RedisScopeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultScopeTTL
	}

	return &RedisScopeCache{
		client:    client,
		keyPrefix: "listing:",
		ttl:       ttl,
	}, nil
}

// NewRedisScopeCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisScopeCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisScopeCache {
	if keyPrefix == "" {
		keyPrefix = "listing:"
	}
	if ttl <= 0 {
		ttl = defaultScopeTTL
	}
	return &RedisScopeCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// entryKey builds the Redis key for one query within a scope
func (c *RedisScopeCache) entryKey(scope view.Scope, queryKey string) string {
	return c.keyPrefix + scope.Key() + ":" + queryKey
}

// Get retrieves a cached payload for a query within a scope
func (c *RedisScopeCache) Get(ctx context.Context, scope view.Scope, queryKey string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.entryKey(scope, queryKey)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read scope cache: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload under the scope
func (c *RedisScopeCache) Set(ctx context.Context, scope view.Scope, queryKey string, payload []byte, ttl time.Duration) error {
	if payload == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := c.client.Set(ctx, c.entryKey(scope, queryKey), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write scope cache: %w", err)
	}
	return nil
}

// Invalidate drops every entry under each of the given scopes. Keys are
// discovered with SCAN so a large keyspace never blocks the server.
func (c *RedisScopeCache) Invalidate(ctx context.Context, scopes []view.Scope) error {
	for _, scope := range scopes {
		pattern := c.keyPrefix + scope.Key() + ":*"

		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan scope %s: %w", scope.Key(), err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to invalidate scope %s: %w", scope.Key(), err)
			}
		}
	}
	return nil
}

// Close closes the Redis client
func (c *RedisScopeCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisScopeCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisScopeCache implements ScopeCache
var _ ScopeCache = (*RedisScopeCache)(nil)
