package tools

import (
	"errors"
	"fmt"

	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
)

// Sentinel errors for tool dispatch.
var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrAuthRequired = errors.New("canvas access token is required for this tool; ask the student to link their Canvas account")
)

// ErrorKind classifies a tool failure for the model and the trace
type ErrorKind string

const (
	KindUnknownTool ErrorKind = "unknown_tool"
	KindAuth        ErrorKind = "auth"
	KindInput       ErrorKind = "input"
	KindUpstream    ErrorKind = "upstream"
	KindInternal    ErrorKind = "internal"
)

// InputError missing or malformed tool argument
type InputError struct {
	Tool   string
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: invalid input: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: invalid input %q: %s", e.Tool, e.Field, e.Reason)
}

// ToolError LMS failure wrapped with the operation that caused it
type ToolError struct {
	Tool string
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Tool, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// KindOf maps err onto the tool error taxonomy
func KindOf(err error) ErrorKind {
	var inputErr *InputError
	var toolErr *ToolError
	switch {
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrAuthRequired), errors.Is(err, canvas.ErrUnauthorized):
		return KindAuth
	case errors.As(err, &inputErr):
		return KindInput
	case errors.As(err, &toolErr):
		return KindUpstream
	default:
		return KindInternal
	}
}
