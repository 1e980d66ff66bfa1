package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/talberry/sdsu-study-bot/internal/pkg/ctxutil"
	"github.com/talberry/sdsu-study-bot/internal/pkg/id"
)

// RequestIDHeader header carrying the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses a valid inbound X-Request-ID or mints one,
// echoes it on the response and stores it in the request context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !id.IsValid(requestID) {
			requestID = id.New()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
