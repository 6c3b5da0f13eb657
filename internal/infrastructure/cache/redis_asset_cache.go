package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/signbridge/backend/internal/application/workflow"
)

const defaultAssetKeyPrefix = "signbridge:asset_url:"

// RedisAssetURLCache implements AssetURLCache using Redis.
// Instances behind a load balancer share resolved URLs through it.
type RedisAssetURLCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisAssetURLCache creates a new Redis-based asset URL cache
func NewRedisAssetURLCache(cfg RedisConfig) (*RedisAssetURLCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAssetURLCache{
		client:    client,
		keyPrefix: defaultAssetKeyPrefix,
	}, nil
}

// NewRedisAssetURLCacheWithClient creates a cache with an existing Redis client
func NewRedisAssetURLCacheWithClient(client *redis.Client, keyPrefix string) *RedisAssetURLCache {
	if keyPrefix == "" {
		keyPrefix = defaultAssetKeyPrefix
	}
	return &RedisAssetURLCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached URL for assetID
func (c *RedisAssetURLCache) Get(ctx context.Context, assetID string) (string, bool, error) {
	url, err := c.client.Get(ctx, c.keyPrefix+assetID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read asset url: %w", err)
	}
	return url, true, nil
}

// Set stores url for assetID for ttl
func (c *RedisAssetURLCache) Set(ctx context.Context, assetID, url string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+assetID, url, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache asset url: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisAssetURLCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisAssetURLCache) Close() error {
	return c.client.Close()
}

// Ensure RedisAssetURLCache implements AssetURLCache
var _ workflow.AssetURLCache = (*RedisAssetURLCache)(nil)
