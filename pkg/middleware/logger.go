package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/waste-chat/pkg/logger"
	"go.uber.org/zap"
)

// Health and scrape routes log at debug level.
var quietPaths = map[string]bool{
	"/healthz":      true,
	"/health/ready": true,
	"/metrics":      true,
}

// RequestLogger writes one log line per request, tagged with the correlation id.
// Message text never reaches the log; only the path is recorded.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= 500 || len(c.Errors) > 0:
			log.Error("request failed", fields...)
		case quietPaths[c.Request.URL.Path]:
			log.Debug("request", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
