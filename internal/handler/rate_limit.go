package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/service"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			if strings.Contains(err.Error(), "rate limit exceeded") {
				c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
				c.Header("X-RateLimit-Retry-After", extractRetryAfter(err.Error()))

				remaining, _ := rateLimiter.GetRemainingRequests(c.Request.Context(), key, limit, window)
				c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

				c.JSON(http.StatusTooManyRequests, dto.MessageResponse{Message: "Too many requests."})
				c.Abort()
				return
			}

			// Redis problems must not take the endpoint down; let the
			// request through
			c.Next()
			return
		}

		if !allowed {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.JSON(http.StatusTooManyRequests, dto.MessageResponse{Message: "Too many requests."})
			c.Abort()
			return
		}

		remaining, _ := rateLimiter.GetRemainingRequests(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// IPBasedKey extracts the rate limit key from the client IP
func IPBasedKey(c *gin.Context) string {
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}
	return c.ClientIP()
}

// extractRetryAfter pulls the wait time out of the limiter's error text
func extractRetryAfter(errMsg string) string {
	if strings.Contains(errMsg, "try again in") {
		parts := strings.Split(errMsg, "try again in")
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1])
		}
	}
	return "60"
}
