package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// UserRateLimiter keeps one token bucket per identity. A bucket that is not
// used for expirationTime is dropped.
type UserRateLimiter struct {
	limiters       map[string]*entry
	mu             sync.Mutex
	rate           rate.Limit
	burst          int
	expirationTime time.Duration
}

// New creates a limiter allowing ratePerSec requests per second with the given burst.
func New(ratePerSec float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*entry),
		rate:           rate.Limit(ratePerSec),
		burst:          burst,
		expirationTime: expirationTime,
	}
}

func (url *UserRateLimiter) getLimiter(identity string) *rate.Limiter {
	url.mu.Lock()
	defer url.mu.Unlock()

	e, exists := url.limiters[identity]
	if exists {
		e.timer.Reset(url.expirationTime)
		return e.limiter
	}

	e = &entry{limiter: rate.NewLimiter(url.rate, url.burst)}
	e.timer = time.AfterFunc(url.expirationTime, func() {
		url.mu.Lock()
		if url.limiters[identity] == e {
			delete(url.limiters, identity)
		}
		url.mu.Unlock()
	})
	url.limiters[identity] = e
	return e.limiter
}

// Allow checks if a request should be allowed for a given identity
func (url *UserRateLimiter) Allow(identity string) bool {
	return url.getLimiter(identity).Allow()
}

// Len reports the number of tracked identities.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

// Stop cleans up all timers
func (url *UserRateLimiter) Stop() {
	url.mu.Lock()
	defer url.mu.Unlock()

	for _, e := range url.limiters {
		e.timer.Stop()
	}
}
