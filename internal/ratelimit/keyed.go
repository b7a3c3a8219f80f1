// Package ratelimit hands out token buckets keyed by caller identity.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config configures a Keyed limiter. Zero values pick the defaults noted below.
type Config struct {
	Limit rate.Limit
	Burst int
	// IdleTTL is how long a bucket may go unused before it is dropped (10m).
	IdleTTL time.Duration
	// SweepEvery runs the idle sweep on every Nth Allow call (1024).
	SweepEvery int
	Now        func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed keeps one bucket per key. Idle buckets are swept inline from Allow,
// so there is no background goroutine to stop.
type Keyed struct {
	mu      sync.Mutex
	cfg     Config
	buckets map[string]*bucket
	calls   int
}

func NewKeyed(cfg Config) *Keyed {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = 1024
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Keyed{cfg: cfg, buckets: make(map[string]*bucket)}
}

// Allow takes one token from key's bucket, creating it full on first use.
func (k *Keyed) Allow(key string) bool {
	now := k.cfg.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	k.calls++
	if k.calls%k.cfg.SweepEvery == 0 {
		k.sweepLocked(now)
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.cfg.Limit, k.cfg.Burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Sweep drops idle buckets and reports how many were removed.
func (k *Keyed) Sweep() int {
	now := k.cfg.Now()
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sweepLocked(now)
}

func (k *Keyed) sweepLocked(now time.Time) int {
	removed := 0
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.cfg.IdleTTL {
			delete(k.buckets, key)
			removed++
		}
	}
	return removed
}

func (k *Keyed) Limit() rate.Limit { return k.cfg.Limit }

func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
