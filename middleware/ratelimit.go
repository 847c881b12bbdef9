package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
)

// RateLimit throttles requests per client IP under the given bucket prefix.
// Limiter failures let the request through.
func RateLimit(l ratelimit.Limiter, prefix string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), prefix+":"+c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", "1")
			abort(c, &apperr.Error{Kind: apperr.KindRateLimited, Message: "too many requests"})
			return
		}
		c.Next()
	}
}
