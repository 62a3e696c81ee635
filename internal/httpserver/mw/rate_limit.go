package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/allocsoc/awesome-crawler/internal/utils"
)

// RateLimitConfig configures a per-client token bucket. A Burst of 0
// disables limiting.
type RateLimitConfig struct {
	Burst         int           // requests a client may send at once
	PerMinute     int           // tokens refilled per client per minute
	MaxEntries    int           // sweep idle buckets when the table reaches this size, 0 = no cap
	SweepInterval time.Duration // default 1m
	IdleTTL       time.Duration // default 15m
	TrustProxy    bool          // resolve the client IP from proxy headers
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time // guarded by limiter.mu
}

type limiter struct {
	cfg       RateLimitConfig
	every     rate.Limit
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig, now time.Time) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	return &limiter{
		cfg:       cfg,
		every:     rate.Limit(float64(cfg.PerMinute) / 60.0),
		buckets:   make(map[string]*bucket),
		lastSweep: now,
	}
}

func (l *limiter) bucketFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries) {
		l.sweepLocked(now)
	}

	b := l.buckets[key]
	if b == nil {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// take consumes one token. When none is left it returns the seconds until
// the next one.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining, retryAfter int) {
	lim := l.bucketFor(key, now)
	if lim.AllowN(now, 1) {
		return true, int(lim.TokensAt(now)), 0
	}
	missing := 1 - lim.TokensAt(now)
	return false, 0, max(1, int(math.Ceil(missing/float64(l.every))))
}

func (l *limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimit limits requests per client IP. Rejected requests get 429 with
// Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, time.Now)
}

func rateLimit(cfg RateLimitConfig, now func() time.Time) func(http.Handler) http.Handler {
	if cfg.Burst < 1 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg, now())
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retry := l.take(utils.ClientIP(r, cfg.TrustProxy), now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeStatus(w, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
