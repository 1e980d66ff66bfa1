package id

import (
	"github.com/google/uuid"
)

// toolCallPrefix marks ids minted locally for tool calls the provider left unnamed
const toolCallPrefix = "call_"

// New returns a new UUID string
func New() string {
	return uuid.New().String()
}

// NewToolCallID returns a correlation id for a tool call
func NewToolCallID() string {
	return toolCallPrefix + uuid.New().String()
}

// IsValid reports whether id parses as a UUID.
// Used to decide whether an inbound X-Request-ID can be trusted.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
