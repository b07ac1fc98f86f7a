package middleware

import (
	"time"

	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// AccessLogMiddleware writes one structured log line per request.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", utils.GetClientIP(c.Request),
			"user_agent", utils.GetUserAgent(c.Request),
		}
		if sid := c.GetString("session_id"); sid != "" {
			args = append(args, "session_id", sid)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "request completed", args...)
		case status >= 400:
			logger.WarnContext(ctx, "request completed", args...)
		default:
			logger.InfoContext(ctx, "request completed", args...)
		}
	}
}
