package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// Logger middleware writes one access log line per request.
// Probe traffic under /health is logged at debug level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			kv = append(kv, "error", errs)
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case strings.HasPrefix(path, "/health"):
			l.Debugw("http request", kv...)
		case status >= 500:
			l.Errorw("http request", kv...)
		default:
			l.Infow("http request", kv...)
		}
	}
}
