// File: internal/middleware/ratelimit_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexus_mapping_backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newRateLimitedRouter(limit int, window time.Duration, clock *fakeClock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		RateLimitMaxRequests: limit,
		RateLimitWindow:      window,
	}
	router := gin.New()
	router.Use(RateLimitMiddleware(NewMemoryCounterStore(), cfg, clock.Now, zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsUpToLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newRateLimitedRouter(3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		rec := hit(router, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
}

func TestRateLimitRejectsBeyondLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newRateLimitedRouter(3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		hit(router, "10.0.0.1")
	}
	clock.Advance(10 * time.Second)
	rec := hit(router, "10.0.0.1")

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "50", rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many requests.", body["message"])
}

func TestRateLimitWindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newRateLimitedRouter(2, time.Minute, clock)

	hit(router, "10.0.0.1")
	hit(router, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)

	clock.Advance(time.Minute)
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
}

func TestRateLimitIsPerClientIP(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	router := newRateLimitedRouter(1, time.Minute, clock)

	require.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)

	// A different client gets its own window.
	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.2").Code)
}

func TestMemoryCounterStorePurgesStaleWindows(t *testing.T) {
	store := NewMemoryCounterStore().(*memoryCounterStore)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.Incr("a", base, time.Minute)
	store.Incr("b", base, time.Minute)
	require.Len(t, store.windows, 2)

	// Both windows are stale two minutes later; the purge drops them before
	// the new window for "a" is created.
	count, _ := store.Incr("a", base.Add(2*time.Minute), time.Minute)
	assert.Equal(t, 1, count)
	assert.Len(t, store.windows, 1)
}
