package http

import "strings"

// Error codes shared by every endpoint
const (
	CodeInvalidBody  = 40001
	CodeMissingParam = 40002
	CodeMissingToken = 40101
	CodeNotFound     = 40401
	CodeInternal     = 50001
	CodeUpstream     = 50201
	CodeModel        = 50202
)

// ErrorResponse error envelope for all APIs
type ErrorResponse struct {
	Code    int    `json:"code"`             // non-zero error code
	Message string `json:"message"`          // human readable message
	Detail  string `json:"detail,omitempty"` // optional detail
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
