package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/logger"
)

type RequestLogger struct {
	log *logger.Logger
}

func NewRequestLogger(log *logger.Logger) *RequestLogger {
	return &RequestLogger{log: log.With("middleware", "RequestLogger")}
}

// Handler logs one line per request with latency and status. Request bodies
// are never logged; survey responses can carry PII.
func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			rl.log.Error("request", fields...)
		case status >= 400:
			rl.log.Warn("request", fields...)
		default:
			rl.log.Info("request", fields...)
		}
	}
}
