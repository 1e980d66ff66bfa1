package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
)

// sensitiveParams query parameters never written to the access log
var sensitiveParams = []string{"token", "access_token"}

// skipPaths probe endpoints left out of the access log
var skipPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// Logger access log middleware
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := redactQuery(c.Request.URL.RawQuery)

		c.Next()

		if skipPaths[path] {
			return
		}

		latency := time.Since(start)
		status := c.Writer.Status()

		l := logger.FromContext(c.Request.Context())
		event := l.Info()
		if status >= 400 {
			event = l.Warn()
		}
		if status >= 500 {
			event = l.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size()).
			Msg("HTTP request")
	}
}

// redactQuery masks credential parameters in a raw query string
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[unparseable]"
	}
	for _, name := range sensitiveParams {
		if values.Has(name) {
			values.Set(name, "REDACTED")
		}
	}
	return values.Encode()
}
