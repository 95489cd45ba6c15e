package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mapda-dev/mapda-api/internal/dto"
	"github.com/mapda-dev/mapda-api/internal/service"
)

// RateLimitMiddleware throttles requests per client IP. It is applied to the
// login endpoints, where each request can trigger outbound calls to a
// provider. A redis outage fails open: login availability beats throttling.
func RateLimitMiddleware(limiter *service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), clientKey(c))
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// clientKey derives the rate limit key from the client IP, honoring the
// first entry of X-Forwarded-For when a proxy is in front.
func clientKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.ClientIP()
}
