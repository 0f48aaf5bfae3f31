package contactlist

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// statsTTL matches the dashboard's 30-second refresh interval.
const statsTTL = 30 * time.Second

// StatsCache caches per-owner dashboard aggregates in Redis. Cache failures
// are logged and treated as misses; the database remains authoritative.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates a stats cache with the default TTL.
func NewStatsCache(rdb *redis.Client) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: statsTTL}
}

func (c *StatsCache) key(ownerID string) string {
	return "contacthub:list_stats:" + ownerID
}

// Get returns the cached overview for an owner, if present.
func (c *StatsCache) Get(ctx context.Context, ownerID string) (*Overview, bool) {
	data, err := c.rdb.Get(ctx, c.key(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[contactlist.StatsCache] get: %v", err)
		return nil, false
	}
	var ov Overview
	if err := json.Unmarshal(data, &ov); err != nil {
		return nil, false
	}
	return &ov, true
}

// Set stores the overview for an owner.
func (c *StatsCache) Set(ctx context.Context, ownerID string, ov *Overview) {
	data, err := json.Marshal(ov)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(ownerID), data, c.ttl).Err(); err != nil {
		log.Printf("[contactlist.StatsCache] set: %v", err)
	}
}

// Invalidate drops the cached overview after a mutation.
func (c *StatsCache) Invalidate(ctx context.Context, ownerID string) {
	if err := c.rdb.Del(ctx, c.key(ownerID)).Err(); err != nil {
		log.Printf("[contactlist.StatsCache] invalidate: %v", err)
	}
}
