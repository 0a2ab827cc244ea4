// Package ratelimit provides a keyed token-bucket rate limiter.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry is a limiter plus the last time its key was seen.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Each unique key gets its own independent limiter; keys idle for longer
// than the idle TTL are evicted in the background.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a keyed limiter allowing rps requests per second with the given burst.
// Keys unused for idleTTL are forgotten; zero disables eviction.
func New(rps float64, burst int, idleTTL time.Duration) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if idleTTL > 0 {
		go krl.cleanupLoop(idleTTL)
	}

	return krl
}

// PerMinute is New expressed in requests per minute, evicting keys idle for ten minutes.
func PerMinute(requests, burst int) *KeyedRateLimiter {
	return New(float64(requests)/60, burst, 10*time.Minute)
}

// Allow reports whether a request for key may proceed now.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// RetryAfter is the time one token takes to refill, suitable for a Retry-After header.
func (krl *KeyedRateLimiter) RetryAfter() time.Duration {
	if krl.limit <= 0 {
		return time.Minute
	}
	return time.Duration(float64(time.Second) / float64(krl.limit))
}

// Len returns the number of keys currently tracked.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// evictIdle drops keys not seen since the idle TTL.
func (krl *KeyedRateLimiter) evictIdle() {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
		}
	}
}

func (krl *KeyedRateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evictIdle()
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

// Shutdown implements do.Shutdowner.
func (krl *KeyedRateLimiter) Shutdown() error {
	krl.Stop()
	return nil
}
