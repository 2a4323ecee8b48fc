package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Snehagupta1907/monad-journal/internal/metrics"
	"github.com/Snehagupta1907/monad-journal/internal/utils"
)

type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int // sweep early once this many clients are tracked, 0 => unbounded
	SweepInterval     time.Duration
	IdleTTL           time.Duration
	TrustProxy        bool // resolve IP from proxy headers when true
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP and forgets idle clients.
type clientLimiter struct {
	cfg       RateLimitConfig
	every     rate.Limit
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newClientLimiter(cfg RateLimitConfig, now time.Time) *clientLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)

	return &clientLimiter{
		cfg:       cfg,
		every:     rate.Limit(float64(cfg.RefillPerIPPerMin) / 60),
		clients:   make(map[string]*client),
		lastSweep: now,
	}
}

// reserve takes one token for ip. When none is available it returns the wait before the next one.
func (l *clientLimiter) reserve(ip string, now time.Time) (ok bool, remaining int, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries) {
		l.sweepLocked(now)
	}

	c, found := l.clients[ip]
	if !found {
		c = &client{lim: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	r := c.lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, 0, d
	}
	return true, int(math.Floor(c.lim.TokensAt(now))), 0
}

func (l *clientLimiter) sweepLocked(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.cfg.IdleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit applies a per-client-IP token bucket. Rejected requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newClientLimiter(cfg, time.Now())
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, wait := l.reserve(utils.ClientIP(r, l.cfg.TrustProxy), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			if !ok {
				metrics.RateLimited.Inc()
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, remaining)))
			next.ServeHTTP(w, r)
		})
	}
}
