package model

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
)

// ChatResponse non-streaming chat answer
type ChatResponse struct {
	Text      string                 `json:"text"`
	Message   *schema.Message        `json:"message" swaggertype:"object"`
	ToolTrace []agent.ToolTraceEntry `json:"toolTrace"`
}

// StreamEventType SSE event discriminator
type StreamEventType string

const (
	StreamEventTool  StreamEventType = "tool"
	StreamEventFinal StreamEventType = "final"
	StreamEventError StreamEventType = "error"
)

// ToolStatus tool event phase
type ToolStatus string

const (
	ToolStarted   ToolStatus = "started"
	ToolCompleted ToolStatus = "completed"
)

// StreamEvent one SSE data frame
type StreamEvent struct {
	Type StreamEventType `json:"type"`

	// tool events
	Step   int             `json:"step,omitempty"`
	Name   string          `json:"name,omitempty"`
	Status ToolStatus      `json:"status,omitempty"`
	Input  json.RawMessage `json:"input,omitempty" swaggertype:"object"`
	Output json.RawMessage `json:"output,omitempty" swaggertype:"object"`

	// tool and error events
	Error string `json:"error,omitempty"`
}

// FinalEvent last SSE frame of a successful run; text and toolTrace are always present
type FinalEvent struct {
	Type      StreamEventType        `json:"type"`
	Text      string                 `json:"text"`
	ToolTrace []agent.ToolTraceEntry `json:"toolTrace"`
}

// NewFinalEvent builds the final frame, never with a null trace
func NewFinalEvent(text string, trace []agent.ToolTraceEntry) FinalEvent {
	if trace == nil {
		trace = []agent.ToolTraceEntry{}
	}
	return FinalEvent{Type: StreamEventFinal, Text: text, ToolTrace: trace}
}

// StudyPackResponse study pack answer
type StudyPackResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}
