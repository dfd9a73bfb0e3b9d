package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/metrics"
	"coinflip-ladder-backend/internal/services"
)

const clientIDKey = "client_id"

// ClientID identifies a caller for rate limiting: the first X-Forwarded-For
// entry, else X-Real-IP, else "unknown".
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}

// RateLimitMiddleware throttles POST requests per client id.
func RateLimitMiddleware(limiter services.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		clientID := ClientID(c.Request)
		c.Set(clientIDKey, clientID)

		allowed, err := limiter.Allow(c.Request.Context(), clientID)
		if err != nil {
			logger.Error("Rate limit check failed", "client_id", clientID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		if !allowed {
			metrics.RateLimitHits.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "Too many requests. Please slow down.",
			})
			return
		}

		c.Next()
	}
}
