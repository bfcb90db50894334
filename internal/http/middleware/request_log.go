package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/advanced-rating/internal/platform/ctxutil"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

// Probe paths are logged at debug only.
var quietPaths = map[string]bool{
	"/healthcheck": true,
	metricsPath:    true,
}

// RequestLogger writes one line per request once the handler chain is done.
// Upstream cookies are passed under a redacted key and client ips are hashed
// by the logger.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		ctx := c.Request.Context()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(began).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if td := ctxutil.GetTraceData(ctx); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if ud := ctxutil.GetUpstreamData(ctx); ud != nil && ud.Cookie != "" {
			fields = append(fields, "upstream_cookie", ud.Cookie)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "errors", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietPaths[c.Request.URL.Path]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
