package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/models"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = time.Hour
	limiterSweepTick = 5 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one token bucket per identity.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

func newLimiterSet(cfg config.RateLimitConfig) *limiterSet {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &limiterSet{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    burst,
	}
}

func (s *limiterSet) get(identity string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.limiters[identity]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[identity] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evict drops identities not seen since cutoff.
func (s *limiterSet) evict(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, id)
		}
	}
}

// RateLimit returns per-identity (API key or IP) token-bucket rate limiting
// middleware powered by golang.org/x/time/rate.
//
// Identities unused for an hour are evicted by a background goroutine.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	set := newLimiterSet(cfg)

	go func() {
		ticker := time.NewTicker(limiterSweepTick)
		defer ticker.Stop()
		for now := range ticker.C {
			set.evict(now.Add(-limiterIdleTTL))
		}
	}()

	return func(c *gin.Context) {
		// Prefer API key as identity (set by auth middleware); fall back to IP.
		identity := c.GetString("api_key")
		if identity == "" {
			identity = c.ClientIP()
		}

		limiter := set.get(identity, time.Now())
		if !limiter.Allow() {
			if wait := retryAfter(set.limit); wait > 0 {
				c.Header("Retry-After", strconv.Itoa(wait))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}

// retryAfter is the whole seconds until one token refills.
func retryAfter(l rate.Limit) int {
	if l <= 0 || l == rate.Inf {
		return 0
	}
	return int(math.Ceil(1 / float64(l)))
}
