package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlbahja/01-blog/internal/auth"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultLimiterIdleTTL = 10 * time.Minute
	limiterSweepInterval  = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimiter implements token bucket rate limiting per identity.
// Buckets idle longer than the idle TTL are swept on a later request.
type RateLimiter struct {
	limiters  sync.Map // key -> *limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep atomic.Int64
}

type RateLimiterOption func(*RateLimiter)

// WithIdleTTL sets how long an unused bucket is kept.
func WithIdleTTL(d time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.idleTTL = d
	}
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: defaultLimiterIdleTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}

	// A bucket must not be dropped before it could have refilled.
	if requestsPerSecond > 0 {
		refill := time.Duration(float64(burst) / requestsPerSecond * float64(time.Second))
		if rl.idleTTL < refill {
			rl.idleTTL = refill
		}
	}
	return rl
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()
	rl.maybeSweep(now)

	v, ok := rl.limiters.Load(key)
	if !ok {
		entry := &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		entry.lastSeen.Store(now.UnixNano())
		v, _ = rl.limiters.LoadOrStore(key, entry)
	}
	entry := v.(*limiterEntry)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

func (rl *RateLimiter) maybeSweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepInterval) {
		return
	}
	if rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		rl.Prune(now)
	}
}

// Prune removes buckets idle since before now minus the idle TTL and returns how many were dropped.
func (rl *RateLimiter) Prune(now time.Time) int {
	cutoff := now.Add(-rl.idleTTL).UnixNano()
	removed := 0
	rl.limiters.Range(func(key, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len reports the number of tracked buckets.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware limits authenticated callers by username and everyone else by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if p, ok := auth.CurrentPrincipal(c); ok {
				key = "user:" + p.Username
			}

			limiter := rl.getLimiter(key)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))

			if !limiter.Allow() {
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.Tokens())))
			return next(c)
		}
	}
}

// NewStrictRateLimiter guards credential endpoints: 5 req/sec, burst of 10.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// NewGlobalRateLimiter is the lenient limiter for general API usage: 100 req/sec, burst of 200.
func NewGlobalRateLimiter() *RateLimiter {
	return NewRateLimiter(100, 200)
}
