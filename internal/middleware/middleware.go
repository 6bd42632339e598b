package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/meteopin/pkg/metrics"
)

// DeviceRateLimiter manages rate limits per device identifier.
type DeviceRateLimiter struct {
	limiters map[string]*rateLimiterEntry
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// rateLimiterEntry holds a limiter with its last access time for cleanup
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewDeviceRateLimiter(r rate.Limit, b int) *DeviceRateLimiter {
	rl := &DeviceRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     r,
		burst:    b,
	}

	// Start periodic cleanup goroutine (every 15 minutes)
	go rl.cleanupLoop()

	return rl
}

func (rl *DeviceRateLimiter) Allow(deviceID string) bool {
	rl.mu.RLock()
	entry, exists := rl.limiters[deviceID]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		newLimiter := rate.NewLimiter(rl.rate, rl.burst)
		entry = &rateLimiterEntry{
			limiter:    newLimiter,
			lastAccess: time.Now(),
		}
		rl.limiters[deviceID] = entry
		rl.mu.Unlock()
	} else {
		rl.mu.Lock()
		entry.lastAccess = time.Now()
		rl.mu.Unlock()
	}

	return entry.limiter.Allow()
}

// cleanupLoop periodically removes inactive rate limiters to prevent memory leaks
func (rl *DeviceRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.cleanup()
	}
}

// cleanup removes rate limiters that haven't been accessed in the last hour
func (rl *DeviceRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for deviceID, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, deviceID)
		}
	}
}

// RequestLogging attaches a request id and logs each request after handling.
func RequestLogging(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	}
}

// RequestMetrics records per-request counters and durations.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.IncrementCounter("http_requests_total", c.Request.Method, path, strconv.Itoa(c.Writer.Status()))
		m.ObserveHistogram("http_request_duration_seconds", time.Since(start).Seconds(), c.Request.Method, path)
	}
}

// RateLimit rejects requests whose device exceeded its token bucket. Requests
// without a device id (the proxy endpoints) fall back to the client IP.
func RateLimit(rl *DeviceRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("deviceId")
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.Allow(key) {
			c.AbortWithStatusJSON(429, gin.H{
				"success":   false,
				"message":   "too many requests",
				"timestamp": time.Now().UnixMilli(),
			})
			return
		}

		c.Next()
	}
}
