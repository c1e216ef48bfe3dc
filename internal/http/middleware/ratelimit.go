package middleware

import (
	"net/http"
	"sync"
	"time"
)

// Stale buckets are swept during Allow calls instead of on a background
// goroutine, so an idle limiter costs nothing.
const (
	sweepInterval = 5 * time.Minute
	bucketMaxIdle = 10 * time.Minute
)

// RateLimiter throttles clients with a per-key token bucket. The prescription
// processing route uses it so a stuck retry loop in the front desk UI cannot
// flood the pipeline.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	perSecond float64
	burst     float64
	lastSweep time.Time
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows rate requests per second with the given burst per key.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:   make(map[string]*tokenBucket),
		perSecond: rate,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Allow reports whether a request under key fits the limit, consuming a token
// when it does.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	b, ok := rl.buckets[key]
	if !ok {
		rl.buckets[key] = &tokenBucket{tokens: rl.burst - 1, seen: now}
		return true
	}

	b.tokens += now.Sub(b.seen).Seconds() * rl.perSecond
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to have fully refilled. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.seen) > bucketMaxIdle {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// RateLimit returns middleware that answers 429 once a client exhausts its
// bucket. Clients are keyed by the X-Real-Ip header that chi's RealIP
// middleware sets, falling back to the raw remote address.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Real-Ip")
			if key == "" {
				key = r.RemoteAddr
			}
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
