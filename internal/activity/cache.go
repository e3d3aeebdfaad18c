package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// MemoryCache is an in-process RecentCache. It tracks at most maxUsers users
// and evicts the least recently written one beyond that.
type MemoryCache struct {
	mu    sync.Mutex
	users *lru.Cache
}

// NewMemoryCache creates a MemoryCache holding up to maxUsers feeds.
func NewMemoryCache(maxUsers int) *MemoryCache {
	return &MemoryCache{users: lru.New(maxUsers)}
}

// Push prepends event to the user's feed and trims it to RecentCapacity.
func (c *MemoryCache) Push(_ context.Context, userID uuid.UUID, event RecentEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var feed []RecentEvent
	if v, ok := c.users.Get(userID); ok {
		feed = v.([]RecentEvent)
	}
	next := make([]RecentEvent, 0, min(len(feed)+1, RecentCapacity))
	next = append(next, event)
	for _, e := range feed {
		if len(next) == RecentCapacity {
			break
		}
		next = append(next, e)
	}
	c.users.Add(userID, next)
	return nil
}

// Recent returns a copy of the user's feed, newest first.
func (c *MemoryCache) Recent(_ context.Context, userID uuid.UUID) ([]RecentEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.users.Get(userID)
	if !ok {
		return []RecentEvent{}, nil
	}
	feed := v.([]RecentEvent)
	return append([]RecentEvent(nil), feed...), nil
}

// Len returns the number of users with a cached feed.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.users.Len()
}

// RedisCache is a RecentCache shared between server instances. Each user's
// feed is a Redis list of JSON events.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{rdb: rdb, prefix: "activity:recent:", ttl: 30 * 24 * time.Hour}, nil
}

func (c *RedisCache) key(userID uuid.UUID) string {
	return c.prefix + userID.String()
}

// Push prepends event to the user's list and trims it to RecentCapacity.
func (c *RedisCache) Push(ctx context.Context, userID uuid.UUID, event RecentEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recent activity: %w", err)
	}
	key := c.key(userID)
	_, err = c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, raw)
		pipe.LTrim(ctx, key, 0, RecentCapacity-1)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	return nil
}

// Recent returns the user's list, newest first. Entries that fail to decode
// are skipped.
func (c *RedisCache) Recent(ctx context.Context, userID uuid.UUID) ([]RecentEvent, error) {
	raws, err := c.rdb.LRange(ctx, c.key(userID), 0, RecentCapacity-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range: %w", err)
	}
	events := make([]RecentEvent, 0, len(raws))
	for _, raw := range raws {
		var e RecentEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
