package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Policy is a token bucket: Burst tokens, refilled one every Every.
type Policy struct {
	Burst int
	Every time.Duration
}

var defaultPolicies = map[string]Policy{
	// 10 messages, then one every 6 seconds
	"send_message": {Burst: 10, Every: 6 * time.Second},
	// 5 rooms, then one every 12 minutes
	"create_chat": {Burst: 5, Every: 12 * time.Minute},
	// 20 links, then one every 3 minutes
	"create_share_link": {Burst: 20, Every: 3 * time.Minute},
}

var fallbackPolicy = Policy{Burst: 20, Every: 3 * time.Second}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one limiter per key and action.
type RateLimiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	policies map[string]Policy
	fallback Policy
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithPolicies(defaultPolicies, fallbackPolicy)
}

func NewRateLimiterWithPolicies(policies map[string]Policy, fallback Policy) *RateLimiter {
	p := make(map[string]Policy, len(policies))
	for k, v := range policies {
		p[k] = v
	}
	return &RateLimiter{
		entries:  make(map[string]*entry),
		policies: p,
		fallback: fallback,
	}
}

// Allow consumes a token for key/action. When the bucket is empty it returns
// false and how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := time.Now()
	limiter := rl.limiterFor(key, action, now)

	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) limiterFor(key, action string, now time.Time) *rate.Limiter {
	id := key + ":" + action

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[id]
	if !ok {
		policy, found := rl.policies[action]
		if !found {
			policy = rl.fallback
		}
		e = &entry{limiter: rate.NewLimiter(rate.Every(policy.Every), policy.Burst)}
		rl.entries[id] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Cleanup drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for id, e := range rl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(rl.entries, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine runs Cleanup every interval until done is closed.
func (rl *RateLimiter) StartCleanupRoutine(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-done:
				return
			}
		}
	}()
}
