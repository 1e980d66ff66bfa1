package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
	httputil "github.com/talberry/sdsu-study-bot/internal/pkg/http"
	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
	"github.com/talberry/sdsu-study-bot/internal/repository"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

// ErrorResponse alias of the shared error envelope
type ErrorResponse = httputil.ErrorResponse

// requestToken Authorization bearer token, else the fallback from body or query
func requestToken(c *gin.Context, fallback string) string {
	if token := httputil.BearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(fallback)
}

// classify maps an error onto HTTP status, error code and public message
func classify(err error) (int, int, string) {
	var modelErr *agent.ModelError
	var apiErr *canvas.APIError
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, httputil.CodeMissingParam, "Missing required field: message"
	case errors.Is(err, service.ErrMissingParam):
		return http.StatusBadRequest, httputil.CodeMissingParam, err.Error()
	case errors.Is(err, canvas.ErrMissingToken):
		return http.StatusUnauthorized, httputil.CodeMissingToken, "Missing Canvas access token"
	case errors.Is(err, canvas.ErrUnauthorized):
		return http.StatusUnauthorized, httputil.CodeMissingToken, "Canvas rejected the access token"
	case errors.Is(err, canvas.ErrNotFound), errors.Is(err, repository.ErrChatRunNotFound):
		return http.StatusNotFound, httputil.CodeNotFound, "Resource not found"
	case errors.As(err, &modelErr), errors.Is(err, agent.ErrNoAssistantMessage):
		return http.StatusBadGateway, httputil.CodeModel, "The assistant is unavailable, please try again"
	case errors.Is(err, agent.ErrStepLimitExceeded):
		return http.StatusInternalServerError, httputil.CodeInternal, "The assistant could not finish this request"
	case errors.As(err, &apiErr), errors.Is(err, canvas.ErrForeignLink):
		return http.StatusBadGateway, httputil.CodeUpstream, "Canvas request failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, httputil.CodeInternal, "Request cancelled"
	default:
		return http.StatusInternalServerError, httputil.CodeInternal, "Internal server error"
	}
}

// writeError logs err and writes the error envelope
func writeError(c *gin.Context, err error) {
	status, code, message := classify(err)

	l := logger.FromContext(c.Request.Context())
	evt := l.Warn()
	if status >= http.StatusInternalServerError {
		evt = l.Error()
	}
	evt.Err(err).Int("status", status).Int("code", code).Str("path", c.FullPath()).Msg("request failed")

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	})
}

// queryInt64 optional positive integer query parameter; 0 when absent
func queryInt64(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return v, nil
}

func badRequest(c *gin.Context, code int, message string, detail string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}
