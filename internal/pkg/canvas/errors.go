package canvas

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common Canvas failures.
var (
	ErrMissingToken = errors.New("canvas access token is required")
	ErrNotFound     = errors.New("canvas resource not found")
	ErrUnauthorized = errors.New("canvas rejected the access token")
	ErrForeignLink  = errors.New("canvas pagination link points at a different host")
)

// APIError non-2xx response from the Canvas API
type APIError struct {
	StatusCode int
	Body       string
	Path       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("canvas API error: %d - %s", e.StatusCode, e.Body)
}

// Is lets errors.Is match status-derived sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// StatusCode returns the upstream status of err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
