// Package ratelimit provides per-key token buckets for inbound API traffic.
//
// Limiters for keys that stay quiet longer than the idle window are evicted,
// so a long running server does not accumulate one bucket per client forever.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// DefaultIdle is how long an unused limiter is kept.
const DefaultIdle = 10 * time.Minute

// KeyedRateLimiter hands out an independent token bucket per key.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters *ttlcache.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
// A zero rps disables limiting: every call is allowed.
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithIdle(rps, burst, DefaultIdle)
}

// NewWithIdle is New with a custom eviction window.
func NewWithIdle(rps float64, burst int, idle time.Duration) *KeyedRateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	krl := &KeyedRateLimiter{
		limiters: ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](idle)),
		limit:    limit,
		burst:    burst,
	}
	go krl.limiters.Start()
	return krl
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for key is allowed or ctx is done.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	return krl.limiters.Len()
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Get refreshes the idle deadline on a hit.
	if item := krl.limiters.Get(key); item != nil {
		return item.Value()
	}
	limiter := rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters.Set(key, limiter, ttlcache.DefaultTTL)
	return limiter
}

// Stop ends the eviction loop. It is safe to call more than once.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(krl.limiters.Stop)
}
