package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a per-client-IP token bucket to mutating endpoints.
func RateLimit(requestsPerMinute, burst int) gin.HandlerFunc {
	limiters := struct {
		sync.Mutex
		byIP map[string]*rate.Limiter
	}{byIP: make(map[string]*rate.Limiter)}

	every := rate.Every(time.Minute / time.Duration(requestsPerMinute))

	return func(c *gin.Context) {
		ip := c.ClientIP()

		limiters.Lock()
		limiter, ok := limiters.byIP[ip]
		if !ok {
			limiter = rate.NewLimiter(every, burst)
			limiters.byIP[ip] = limiter
		}
		limiters.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
