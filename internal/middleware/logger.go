package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/therapy-scheduler/pkg/logger"
)

// Logger writes one line per request. Server errors log at error level and
// client errors at warn. Request bodies are never logged; they carry client
// identifiers.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		msg := "Request processed"
		switch {
		case status >= 500:
			event = log.Zerolog().Error()
			msg = "Server error"
		case status >= 400:
			event = log.Zerolog().Warn()
			msg = "Client error"
		default:
			event = log.Zerolog().Info()
		}

		if subject := c.GetString(ContextSubject); subject != "" {
			event = event.Str("subject", subject)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
