package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAssistantMessage the model returned no reply
	ErrNoAssistantMessage = errors.New("no assistant message in model response")

	// ErrStepLimitExceeded the loop ran MaxSteps model calls without a final answer
	ErrStepLimitExceeded = errors.New("exceeded safety step threshold")
)

// ModelError hosted model call failure
type ModelError struct {
	Step int
	Err  error
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed at step %d: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *ModelError) Unwrap() error {
	return e.Err
}
