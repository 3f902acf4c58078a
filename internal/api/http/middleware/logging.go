package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avrorin/identity-server/internal/logger"
)

// Logging logs method, path, status and duration for each request.
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		log.Info("HTTP request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds())

		if len(c.Errors) > 0 {
			log.Error("HTTP request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"errors", c.Errors.String())
		}
	}
}
