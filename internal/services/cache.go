package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kalimapp/kalima-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached responses
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL suits slowly-changing reads like the leaderboard
	DefaultCacheTTL = 2 * time.Minute
)

// CacheService is a small JSON response cache in Redis, used for reads
// that fan out to several queries (e.g. the weekly leaderboard).
type CacheService struct{}

// Get retrieves a value from cache. A miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value with the default TTL.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value with a custom TTL.
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, CacheKeyPrefix+key, jsonData, ttl).Err()
}

// Delete removes a value from cache.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return database.RedisClient.Del(ctx, CacheKeyPrefix+key).Err()
}

// Global cache service instance
var Cache = &CacheService{}
