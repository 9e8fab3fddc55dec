package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventplanner/backend/internal/models"
)

// Cache holds denormalized event snapshots. It is advisory only: every method
// absorbs backend failures, so the service behaves identically with a cache
// that never stores anything.
type Cache interface {
	// Get returns the cached snapshot, or false on miss or backend failure.
	Get(ctx context.Context, id uuid.UUID) (*models.Event, bool)
	// Put stores a snapshot with a fresh TTL window. Failures are swallowed.
	Put(ctx context.Context, e *models.Event)
	// Evict removes the entry. Evicting an absent key is a no-op.
	Evict(ctx context.Context, id uuid.UUID)
}

const cacheKeyPrefix = "event:"

func cacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}

// RedisCache is the Redis-backed snapshot cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis snapshot cache with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*models.Event, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.String("event_id", id.String()), zap.Error(err))
		}
		return nil, false
	}
	var e models.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("cache entry corrupt, treating as miss", zap.String("event_id", id.String()), zap.Error(err))
		return nil, false
	}
	return &e, true
}

func (c *RedisCache) Put(ctx context.Context, e *models.Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("event_id", e.ID.String()), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(e.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache put failed", zap.String("event_id", e.ID.String()), zap.Error(err))
	}
}

func (c *RedisCache) Evict(ctx context.Context, id uuid.UUID) {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Warn("cache evict failed", zap.String("event_id", id.String()), zap.Error(err))
	}
}

// NopCache always misses. Selected when caching is disabled or Redis is
// unreachable at startup; cold-cache is a supported configuration.
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) (*models.Event, bool) { return nil, false }
func (NopCache) Put(context.Context, *models.Event)                   {}
func (NopCache) Evict(context.Context, uuid.UUID)                     {}
