// Package cache provides short-lived storage for computed recommendation
// lists. A miss is never an error for callers: the service falls back to
// the database when the cache is cold or unavailable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/paperdesk/paperdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = time.Hour

// RecommendationCache stores per-user recommendation lists.
type RecommendationCache interface {
	Get(ctx context.Context, userID string) ([]*domain.Recommendation, bool)
	Set(ctx context.Context, userID string, recs []*domain.Recommendation)
	Invalidate(ctx context.Context, userID string)
}

// RedisCache keeps recommendation lists in Redis with a short TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("recommendations:user:%s", userID)
}

// Get returns the cached list for a user. Cache failures degrade to a miss.
func (c *RedisCache) Get(ctx context.Context, userID string) ([]*domain.Recommendation, bool) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get failed for user %s: %v", userID, err)
		}
		return nil, false
	}

	var recs []*domain.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		log.Printf("cache: corrupt entry for user %s: %v", userID, err)
		return nil, false
	}
	return recs, true
}

func (c *RedisCache) Set(ctx context.Context, userID string, recs []*domain.Recommendation) {
	data, err := json.Marshal(recs)
	if err != nil {
		log.Printf("cache: marshal failed for user %s: %v", userID, err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID), data, c.ttl).Err(); err != nil {
		log.Printf("cache: set failed for user %s: %v", userID, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		log.Printf("cache: invalidate failed for user %s: %v", userID, err)
	}
}

// NopCache is used when no Redis instance is configured.
type NopCache struct{}

func NewNopCache() *NopCache { return &NopCache{} }

func (*NopCache) Get(ctx context.Context, userID string) ([]*domain.Recommendation, bool) {
	return nil, false
}

func (*NopCache) Set(ctx context.Context, userID string, recs []*domain.Recommendation) {}

func (*NopCache) Invalidate(ctx context.Context, userID string) {}
