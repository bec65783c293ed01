// Package cache provides a Redis-backed cache for computed leaderboards,
// with singleflight collapsing of concurrent recomputations and
// pattern-based invalidation when the underlying lists change.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/pkg/config"
	pkgredis "github.com/iendorse/rankd/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "rank:"

// geoBucket quantizes a coordinate for cache keying. A tenth of a degree is
// roughly seven miles at the equator, coarse enough to share cached local
// rankings between nearby callers.
const geoBucket = 0.1

// Key identifies one leaderboard variant. Local rankings carry a bucketed
// origin and radius; global rankings leave those zero.
type Key struct {
	Kind     engine.EntryKind
	Limit    int
	Local    bool
	Origin   engine.LatLng
	MaxMiles float64
}

// RankingCache caches computed leaderboards in Redis.
type RankingCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a RankingCache.
func New(client *pkgredis.Client, cfg config.RedisConfig) *RankingCache {
	return &RankingCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "ranking-cache"),
	}
}

// Get returns the cached leaderboard for key, if present.
func (c *RankingCache) Get(ctx context.Context, key Key) ([]engine.RankedItem, bool) {
	redisKey := c.buildKey(key)
	data, err := c.client.Get(ctx, redisKey)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", redisKey, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var items []engine.RankedItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		c.logger.Error("cache unmarshal failed", "key", redisKey, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "kind", key.Kind, "key", redisKey)
	return items, true
}

// Set stores a leaderboard with the configured TTL.
func (c *RankingCache) Set(ctx context.Context, key Key, items []engine.RankedItem) {
	redisKey := c.buildKey(key)
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", redisKey, "error", err)
		return
	}
	if err := c.client.Set(ctx, redisKey, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", redisKey, "error", err)
	}
}

// GetOrCompute returns the cached leaderboard or computes, caches, and
// returns it. Concurrent callers for the same key share one computation.
// The bool reports whether the result was served from cache.
func (c *RankingCache) GetOrCompute(
	ctx context.Context,
	key Key,
	computeFn func() ([]engine.RankedItem, error),
) ([]engine.RankedItem, bool, error) {
	if items, ok := c.Get(ctx, key); ok {
		return items, true, nil
	}
	redisKey := c.buildKey(key)
	val, err, _ := c.group.Do(redisKey, func() (interface{}, error) {
		if items, ok := c.Get(ctx, key); ok {
			return items, nil
		}
		items, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, items)
		return items, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]engine.RankedItem), false, nil
}

// Invalidate removes every cached leaderboard.
func (c *RankingCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating ranking cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *RankingCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *RankingCache) buildKey(key Key) string {
	raw := fmt.Sprintf("%s:limit=%d", key.Kind, key.Limit)
	if key.Local {
		raw = fmt.Sprintf("%s:lat=%.1f:lng=%.1f:radius=%.1f",
			raw,
			bucket(key.Origin.Latitude),
			bucket(key.Origin.Longitude),
			key.MaxMiles,
		)
	}
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func bucket(degrees float64) float64 {
	return math.Floor(degrees/geoBucket) * geoBucket
}
