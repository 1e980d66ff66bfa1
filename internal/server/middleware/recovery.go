package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	httputil "github.com/talberry/sdsu-study-bot/internal/pkg/http"
	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
)

// Recovery turns a handler panic into a 500 error envelope
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				l := logger.FromContext(c.Request.Context())
				l.Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				// an SSE stream may already have committed its headers
				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.NewErrorResponse(
					httputil.CodeInternal, "Internal server error", "",
				))
			}
		}()
		c.Next()
	}
}
