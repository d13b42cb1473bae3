package middleware

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter is satisfied by cache.Counter.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows limit requests per client IP per window. When the counter
// is unreachable the request goes through.
func RateLimit(counter Counter, prefix string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := prefix + ":" + c.ClientIP()
		n, err := counter.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("⚠️ Rate limiter unavailable, allowing %s: %v", key, err)
			c.Next()
			return
		}

		remaining := limit - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests, try again later",
				"retry_after": int(window.Seconds()),
			})
			return
		}
		c.Next()
	}
}
