package auth

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP with a token bucket.
// Idle buckets are evicted after ttl.
type LoginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets *expirable.LRU[string, *rate.Limiter]
}

// NewLoginLimiter allows burst attempts at once and then one every interval.
func NewLoginLimiter(interval time.Duration, burst int, ttl time.Duration) *LoginLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &LoginLimiter{
		limit:   rate.Every(interval),
		burst:   burst,
		buckets: expirable.NewLRU[string, *rate.Limiter](10000, nil, ttl),
	}
}

// Allow consumes one attempt for ip and reports whether it is permitted.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.buckets.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// Add refreshes the idle expiry
	l.buckets.Add(ip, lim)
	l.mu.Unlock()
	return lim.Allow()
}

// RetryAfter is the wait before the next attempt would be allowed.
func (l *LoginLimiter) RetryAfter() time.Duration {
	if l.limit == rate.Inf || l.limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l.limit))
}
