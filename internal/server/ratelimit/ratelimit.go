// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// bucket is a token bucket. Callers hold Limiter.mu.
type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
}

func newBucket(capacity int, refillRate float64, now time.Time) *bucket {
	return &bucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.refillRate)
		b.lastRefill = now
	}
}

// take consumes one token if available.
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// fullAt reports when the bucket will be back at capacity.
func (b *bucket) fullAt(now time.Time) time.Time {
	missing := b.capacity - b.tokens
	if missing <= 0 || b.refillRate <= 0 {
		return now
	}
	return now.Add(time.Duration(missing / b.refillRate * float64(time.Second)))
}

// nextTokenAt reports when the next whole token becomes available.
func (b *bucket) nextTokenAt(now time.Time) time.Time {
	if b.tokens >= 1 || b.refillRate <= 0 {
		return now
	}
	return now.Add(time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second)))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter tracks one bucket per client and tier. The least recently used
// buckets are evicted once MaxBuckets is reached.
type Limiter struct {
	mu      sync.Mutex
	config  *Config
	buckets *lru.Cache
	now     func() time.Time
}

// NewLimiter creates a limiter. A nil config enables limiting with the
// default tiers.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:       true,
			DefaultLimit:  600,
			DefaultWindow: time.Minute,
			MaxBuckets:    10000,
			Tiers:         DefaultTiers(),
		}
	}
	maxBuckets := config.MaxBuckets
	if maxBuckets <= 0 {
		maxBuckets = 10000
	}
	return &Limiter{
		config:  config,
		buckets: lru.New(maxBuckets),
		now:     time.Now,
	}
}

// Allow consumes a token for the client on the tier matching path and method.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	tier := MatchTier(path, method, l.config.Tiers)
	if tier == nil {
		tier = &Tier{
			Name:   "default",
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if tier.Limit <= 0 || tier.Window <= 0 {
		return true, Info{Allowed: true, Tier: tier.Name}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := clientID + ":" + tier.Name
	var b *bucket
	if v, ok := l.buckets.Get(key); ok {
		b = v.(*bucket)
	} else {
		capacity := tier.Burst
		if capacity <= 0 {
			capacity = tier.Limit
		}
		b = newBucket(capacity, float64(tier.Limit)/tier.Window.Seconds(), now)
		l.buckets.Add(key, b)
	}

	allowed := b.take(now)
	info := Info{
		Allowed:   allowed,
		Tier:      tier.Name,
		Limit:     tier.Limit,
		Remaining: int(b.tokens),
		ResetTime: b.fullAt(now),
	}
	if !allowed {
		info.RetryAfter = b.nextTokenAt(now).Sub(now)
	}
	return allowed, info
}

// Len reports the number of tracked buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buckets.Len()
}
