package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nisix/errkit/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
}

// RateLimit applies a per-key token bucket. Rejected requests abort with a
// TooManyRequests fault carrying retry_after_seconds and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.RequestsPerSecond))
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	store := newLimiterStore(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	return func(c *gin.Context) {
		allowed, retryAfter := store.allow(cfg.KeyFunc(c))
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abortWith(c, errors.TooManyRequests(map[string]any{"retry_after_seconds": secs}))
			return
		}
		c.Next()
	}
}

// IPBasedKey keys the limiter by client IP. Forwarding headers only count
// when the engine trusts the immediate peer (see gin's SetTrustedProxies).
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// SubjectBasedKey keys the limiter by the authenticated subject, falling back
// to client IP.
func SubjectBasedKey(c *gin.Context) string {
	if claims := ClaimsFrom(c); claims != nil && claims.Subject != "" {
		return claims.Subject
	}
	return c.ClientIP()
}

// limiterStore keeps one token bucket per key. Buckets idle for longer than
// idleTTL are evicted during allow, at most once per sweepInterval.
type limiterStore struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const (
	defaultIdleTTL = 5 * time.Minute
	sweepInterval  = time.Minute
)

func newLimiterStore(limit rate.Limit, burst int) *limiterStore {
	return &limiterStore{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
}

func (s *limiterStore) allow(key string) (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastAccess = now

	if e.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Second
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, delay
}

// sweep drops buckets idle for longer than idleTTL. Callers hold mu.
func (s *limiterStore) sweep(now time.Time) {
	cutoff := now.Add(-s.idleTTL)
	for key, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
