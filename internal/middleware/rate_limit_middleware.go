package middleware

import (
	"math"
	"strconv"

	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/pkg/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client IP under scope. When the limiter
// itself fails the request goes through.
func RateLimit(limiter ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			GetLoggerFromContext(c).Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
				"scope": scope,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"scope":       scope,
				"retry_after": retry,
			})
			apperrors.TooManyRequests(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
