package agent

import (
	"context"
	"encoding/json"

	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
)

// ToolEvent progress of one tool call
type ToolEvent struct {
	Step   int             `json:"step"`
	CallID string          `json:"callId"`
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ProgressReporter observes tool execution.
// Calls are synchronous; implementations must be safe for concurrent use
// when the runner dispatches tools in parallel.
type ProgressReporter interface {
	ToolStarted(evt ToolEvent)
	ToolCompleted(evt ToolEvent)
}

// NopReporter discards events
type NopReporter struct{}

// ToolStarted implements ProgressReporter
func (NopReporter) ToolStarted(ToolEvent) {}

// ToolCompleted implements ProgressReporter
func (NopReporter) ToolCompleted(ToolEvent) {}

// ReporterFuncs adapts plain functions; nil fields are skipped
type ReporterFuncs struct {
	Started   func(ToolEvent)
	Completed func(ToolEvent)
}

// ToolStarted implements ProgressReporter
func (f ReporterFuncs) ToolStarted(evt ToolEvent) {
	if f.Started != nil {
		f.Started(evt)
	}
}

// ToolCompleted implements ProgressReporter
func (f ReporterFuncs) ToolCompleted(evt ToolEvent) {
	if f.Completed != nil {
		f.Completed(evt)
	}
}

// report invokes fn and swallows reporter panics
func report(ctx context.Context, phase string, evt ToolEvent, fn func(ToolEvent)) {
	defer func() {
		if r := recover(); r != nil {
			l := logger.FromContext(ctx)
			l.Error().
				Interface("panic", r).
				Str("phase", phase).
				Str("tool", evt.Name).
				Msg("progress reporter panicked")
		}
	}()
	fn(evt)
}
