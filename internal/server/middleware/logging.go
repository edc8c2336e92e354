package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetscribe/meetscribe/internal/logger"
)

// RequestLogger returns a Gin middleware that logs every request with method,
// path, status code, and latency. Health-check paths are silently skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.WithComponent("http")
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields[logger.FieldRequestID] = id
		}

		switch {
		case status >= 500:
			reqLog.Error("Request failed", fields)
		case status >= 400:
			reqLog.Warn("Request rejected", fields)
		default:
			reqLog.Info("Request completed", fields)
		}
	}
}

func isHealthEndpoint(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}
