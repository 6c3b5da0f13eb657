package cache

import (
	"fmt"
	"io"
	"time"

	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AssetURLCache is a workflow asset cache that holds resources
type AssetURLCache interface {
	workflow.AssetURLCache
	io.Closer
}

// AssetURLCacheFactory creates asset URL caches based on configuration
type AssetURLCacheFactory struct {
	redisConfig           config.RedisConfig
	sweepInterval         time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// AssetURLCacheFactoryOption is a functional option for configuring the factory
type AssetURLCacheFactoryOption func(*AssetURLCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) AssetURLCacheFactoryOption {
	return func(f *AssetURLCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache when Redis is unavailable.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) AssetURLCacheFactoryOption {
	return func(f *AssetURLCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSweepInterval sets the in-memory cleanup interval
func WithSweepInterval(d time.Duration) AssetURLCacheFactoryOption {
	return func(f *AssetURLCacheFactory) {
		f.sweepInterval = d
	}
}

// NewAssetURLCacheFactory creates a new factory
func NewAssetURLCacheFactory(cfg config.RedisConfig, opts ...AssetURLCacheFactoryOption) *AssetURLCacheFactory {
	f := &AssetURLCacheFactory{
		redisConfig:           cfg,
		sweepInterval:         5 * time.Minute,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based asset URL cache
func (f *AssetURLCacheFactory) CreateRedisCache() (AssetURLCache, error) {
	c, err := NewRedisAssetURLCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis asset cache: %w", err)
	}
	return c, nil
}

// CreateInMemoryCache creates an in-memory asset URL cache
func (f *AssetURLCacheFactory) CreateInMemoryCache() AssetURLCache {
	return NewInMemoryAssetURLCache(f.sweepInterval)
}

// CreateCache creates an asset URL cache.
// With Redis disabled it returns an in-memory cache. With Redis enabled it
// tries Redis first and falls back to in-memory if allowed.
func (f *AssetURLCacheFactory) CreateCache() (AssetURLCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory asset URL cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis asset URL cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for asset cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory asset URL cache. "+
		"Instances will resolve assets independently.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
