package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"accountflow/internal/metrics"
)

// RequestLog logs every request through slog and reports it to rec.
func RequestLog(rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		took := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		rec.RecordHTTPRequest(c.Request.Method, route, status, took)

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"took", took.Truncate(time.Microsecond).String(),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			slog.Error("[http] request", attrs...)
		case status >= 400:
			slog.Warn("[http] request", attrs...)
		default:
			slog.Info("[http] request", attrs...)
		}
	}
}
