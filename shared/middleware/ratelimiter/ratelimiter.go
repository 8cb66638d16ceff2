package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per key. Buckets idle for longer
// than expiration are forgotten, which resets them to full.
type UserRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*entry
	rate       rate.Limit
	burst      int
	expiration time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a limiter allowing perSecond requests per key with the given burst.
func New(perSecond float64, burst int, expiration time.Duration) *UserRateLimiter {
	url := &UserRateLimiter{
		limiters:   make(map[string]*entry),
		rate:       rate.Limit(perSecond),
		burst:      burst,
		expiration: expiration,
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go url.janitor()
	return url
}

func (url *UserRateLimiter) Allow(key string) bool {
	url.mu.Lock()
	e, ok := url.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(url.rate, url.burst)}
		url.limiters[key] = e
	}
	now := url.now()
	e.lastSeen = now
	url.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

func (url *UserRateLimiter) evictIdle() {
	url.mu.Lock()
	defer url.mu.Unlock()
	cutoff := url.now().Add(-url.expiration)
	for key, e := range url.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(url.limiters, key)
		}
	}
}

func (url *UserRateLimiter) janitor() {
	interval := url.expiration / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			url.evictIdle()
		case <-url.stop:
			return
		}
	}
}

// Stop ends the background eviction goroutine.
func (url *UserRateLimiter) Stop() {
	url.stopOnce.Do(func() { close(url.stop) })
}
