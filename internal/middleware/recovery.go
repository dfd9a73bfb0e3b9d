package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coinflip-ladder-backend/internal/logger"
)

// Recovery turns panics into a generic 500 and keeps the cause server-side.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Recovered from panic",
			"request_id", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	})
}
