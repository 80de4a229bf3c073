// File: internal/middleware/ratelimit.go
package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"nexus_mapping_backend/internal/common"
	"nexus_mapping_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CounterStore counts requests per key inside fixed windows. Implementations
// must be safe for concurrent use. The in-memory store below suffices for a
// single instance; a shared store can be swapped in behind this interface.
type CounterStore interface {
	// Incr records one request for key at time now and returns the running
	// count for the current window plus the instant the window resets.
	Incr(key string, now time.Time, window time.Duration) (count int, resetAt time.Time)
}

type windowCounter struct {
	start time.Time
	count int
}

type memoryCounterStore struct {
	mu        sync.Mutex
	windows   map[string]*windowCounter
	lastPurge time.Time
}

// NewMemoryCounterStore creates an in-memory fixed-window counter store.
func NewMemoryCounterStore() CounterStore {
	return &memoryCounterStore{windows: make(map[string]*windowCounter)}
}

func (s *memoryCounterStore) Incr(key string, now time.Time, window time.Duration) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(now, window)

	w := s.windows[key]
	if w == nil || now.Sub(w.start) >= window {
		w = &windowCounter{start: now}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.start.Add(window)
}

// purgeLocked drops stale windows at most once per window to bound memory.
func (s *memoryCounterStore) purgeLocked(now time.Time, window time.Duration) {
	if now.Sub(s.lastPurge) < window {
		return
	}
	s.lastPurge = now
	for key, w := range s.windows {
		if now.Sub(w.start) >= window {
			delete(s.windows, key)
		}
	}
}

// RateLimitMiddleware enforces a fixed-window per-client-IP request limit.
// It runs before authentication so unauthenticated floods are cut off early.
func RateLimitMiddleware(store CounterStore, cfg *config.Config, clock func() time.Time, logger *zap.Logger) gin.HandlerFunc {
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = 60 * time.Second
	}
	limit := cfg.RateLimitMaxRequests
	if limit <= 0 {
		limit = 30
	}
	if clock == nil {
		clock = time.Now
	}

	return func(c *gin.Context) {
		now := clock()
		count, resetAt := store.Incr(c.ClientIP(), now, window)
		if count > limit {
			retryAfter := int(math.Ceil(resetAt.Sub(now).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.Warn("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.Int("count", count),
			)
			common.RespondWithError(c, common.ErrRateLimited)
			return
		}
		c.Next()
	}
}
