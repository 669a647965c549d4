package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a fixed-window per-IP request limit. Rejected
// requests get a Retry-After header pointing at the end of the window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	type bucket struct {
		count int
		start time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	return func(c *gin.Context) {
		now := time.Now()
		key := c.ClientIP()

		mu.Lock()
		b, ok := buckets[key]
		if !ok || now.Sub(b.start) > window {
			b = &bucket{start: now}
			buckets[key] = b
		}

		if b.count >= limit {
			retryAfter := int(window.Seconds() - now.Sub(b.start).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			mu.Unlock()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"retryAfter": retryAfter,
			})
			c.Abort()
			return
		}

		b.count++
		mu.Unlock()

		c.Next()
	}
}
