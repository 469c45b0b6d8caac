package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-docchat/internal/platform/ctxutil"
	"github.com/yungbote/neurobridge-docchat/internal/platform/logger"
)

// RequestLogger logs one line per request with its correlation. Server
// errors log at error, client errors and injected faults at warn, retried
// successes at info, the rest at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		corr, _ := ctxutil.CorrelationFrom(c.Request.Context())
		fields = append(fields, corr.Fields()...)
		if sub := c.GetString(SubjectKey); sub != "" {
			fields = append(fields, "user_id", sub)
		}
		if c.GetBool(faultInjectedKey) {
			fields = append(fields, "fault", true)
		}

		switch {
		case status >= 500 && !c.GetBool(faultInjectedKey):
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		case corr.Attempt > 1:
			log.Info("request succeeded after retry", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
