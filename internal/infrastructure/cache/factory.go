package cache

import (
	"fmt"

	"github.com/carbure/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ScopeCacheFactory creates scope caches based on configuration
type ScopeCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ScopeCacheFactoryOption is a functional option for configuring the factory
type ScopeCacheFactoryOption func(*ScopeCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ScopeCacheFactoryOption {
	return func(f *ScopeCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ScopeCacheFactoryOption {
	return func(f *ScopeCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewScopeCacheFactory creates a new factory
func NewScopeCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...ScopeCacheFactoryOption) *ScopeCacheFactory {
	f := &ScopeCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed scope cache
func (f *ScopeCacheFactory) CreateRedisCache() (ScopeCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisScopeCache(redisCfg, f.cacheConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis scope cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory scope cache.
// WARNING: in-memory caches do not share state across process instances,
// which can serve stale listings when mutations land on another instance.
func (f *ScopeCacheFactory) CreateInMemoryCache() ScopeCache {
	return NewInMemoryScopeCache(
		WithInMemoryTTL(f.cacheConfig.TTL),
		WithInMemoryLogger(f.logger),
	)
}

// CreateCache creates a scope cache for the configured backend. The redis
// backend falls back to in-memory when the connection fails and
// AllowInMemoryFallback is true.
func (f *ScopeCacheFactory) CreateCache() (ScopeCache, error) {
	if f.cacheConfig.Backend != "redis" {
		f.logger.Info("using in-memory scope cache")
		return f.CreateInMemoryCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis scope cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for scope cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory scope cache. "+
		"Listings may go stale when mutations land on another instance.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
