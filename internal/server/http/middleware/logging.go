package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger logs one line per request. Attached errors and 5xx responses
// log at error level, other 4xx responses at warn level.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		}
		if route := c.FullPath(); route != "" {
			attrs = append(attrs, slog.String("route", route))
		}
		if userID := c.GetInt64(UserIDContextKey); userID > 0 {
			attrs = append(attrs, slog.Int64("user_id", userID))
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}

		ctx := c.Request.Context()
		switch err := c.Errors.Last(); {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(ctx, slog.LevelError, "http request failed", attrs...)
		case status >= http.StatusInternalServerError:
			logger.LogAttrs(ctx, slog.LevelError, "http request failed", attrs...)
		case status >= http.StatusBadRequest:
			logger.LogAttrs(ctx, slog.LevelWarn, "http request rejected", attrs...)
		default:
			logger.LogAttrs(ctx, slog.LevelInfo, "http request", attrs...)
		}
	}
}
