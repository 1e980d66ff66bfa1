// Package agent runs the tool-calling conversation loop against a hosted model.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/talberry/sdsu-study-bot/internal/ai/prompts"
	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	"github.com/talberry/sdsu-study-bot/internal/pkg/id"
	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
)

// DefaultMaxSteps model round-trips allowed per conversation
const DefaultMaxSteps = 20

// ToolTraceEntry one executed tool call
type ToolTraceEntry struct {
	Step   int             `json:"step"`
	CallID string          `json:"callId"`
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
	Kind   string          `json:"kind,omitempty"`
}

// Result final answer of a conversation
type Result struct {
	Text      string           `json:"text"`
	Message   *schema.Message  `json:"message"`
	ToolTrace []ToolTraceEntry `json:"toolTrace"`
	Steps     int              `json:"steps"`
}

// Runner drives the loop. Safe for concurrent use; all per-conversation
// state lives on the stack of Run.
type Runner struct {
	model       model.BaseChatModel
	registry    *tools.Registry
	system      *schema.Message
	maxSteps    int
	concurrency int
}

// Option configures a Runner
type Option func(*Runner)

// WithMaxSteps bounds model round-trips; non-positive values are ignored
func WithMaxSteps(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithToolConcurrency bounds parallel tool dispatch within a step; 1 is sequential
func WithToolConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithSystemPrompt replaces the default instructions
func WithSystemPrompt(text string) Option {
	return func(r *Runner) {
		r.system = schema.SystemMessage(text)
	}
}

// NewRunner binds the registry's tools to cm once
func NewRunner(cm model.ToolCallingChatModel, registry *tools.Registry, opts ...Option) (*Runner, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if registry == nil {
		registry = tools.NewDefaultRegistry()
	}

	bound, err := cm.WithTools(registry.Infos())
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	r := &Runner{
		model:       bound,
		registry:    registry,
		system:      prompts.SystemMessage(),
		maxSteps:    DefaultMaxSteps,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MaxSteps configured step bound
func (r *Runner) MaxSteps() int {
	return r.maxSteps
}

// Run answers one user message.
// lms must be a nil interface when the caller has no LMS credential;
// credentialed tools then report an auth error to the model.
// On a fatal error the returned Result still carries the steps taken and
// the tool trace so far.
func (r *Runner) Run(ctx context.Context, userText string, lms tools.LMS, reporter ProgressReporter) (*Result, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}
	l := logger.FromContext(ctx)

	history := []*schema.Message{schema.UserMessage(userText)}
	var trace []ToolTraceEntry

	for step := 1; step <= r.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return partial(trace, step-1), err
		}

		input := make([]*schema.Message, 0, len(history)+1)
		input = append(input, r.system)
		input = append(input, history...)

		start := time.Now()
		reply, err := r.model.Generate(ctx, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return partial(trace, step), ctxErr
			}
			l.Error().Err(err).Int("step", step).Msg("model call failed")
			return partial(trace, step), &ModelError{Step: step, Err: err}
		}
		if reply == nil {
			l.Error().Int("step", step).Msg("model returned no message")
			return partial(trace, step), ErrNoAssistantMessage
		}

		l.Debug().
			Int("step", step).
			Int("tool_calls", len(reply.ToolCalls)).
			Str("finish_reason", finishReason(reply)).
			Dur("latency", time.Since(start)).
			Msg("model replied")

		if !wantsTools(reply) {
			if trace == nil {
				trace = []ToolTraceEntry{}
			}
			return &Result{
				Text:      textOf(reply),
				Message:   reply,
				ToolTrace: trace,
				Steps:     step,
			}, nil
		}

		assignCallIDs(reply)
		history = append(history, reply)

		results, entries := r.dispatch(ctx, step, reply.ToolCalls, lms, reporter)
		history = append(history, results...)
		trace = append(trace, entries...)
	}

	l.Warn().Int("max_steps", r.maxSteps).Int("tool_calls", len(trace)).Msg("conversation exceeded step limit")
	return partial(trace, r.maxSteps), ErrStepLimitExceeded
}

// partial is the work done before a fatal error, kept for the run log
func partial(trace []ToolTraceEntry, steps int) *Result {
	if trace == nil {
		trace = []ToolTraceEntry{}
	}
	return &Result{ToolTrace: trace, Steps: steps}
}

// dispatch executes calls and returns tool messages in call order
func (r *Runner) dispatch(ctx context.Context, step int, calls []schema.ToolCall, lms tools.LMS, reporter ProgressReporter) ([]*schema.Message, []ToolTraceEntry) {
	entries := make([]ToolTraceEntry, len(calls))

	if r.concurrency <= 1 || len(calls) == 1 {
		for i, call := range calls {
			entries[i] = r.execute(ctx, step, call, lms, reporter)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(r.concurrency)
		for i, call := range calls {
			g.Go(func() error {
				entries[i] = r.execute(ctx, step, call, lms, reporter)
				return nil
			})
		}
		// execute never returns an error; failures are carried in the entry
		_ = g.Wait()
	}

	msgs := make([]*schema.Message, len(calls))
	for i, call := range calls {
		msgs[i] = schema.ToolMessage(toolContent(entries[i]), call.ID, schema.WithToolName(call.Function.Name))
	}
	return msgs, entries
}

// execute runs a single call; tool failures become trace entries, never errors
func (r *Runner) execute(ctx context.Context, step int, call schema.ToolCall, lms tools.LMS, reporter ProgressReporter) ToolTraceEntry {
	l := logger.FromContext(ctx)
	entry := ToolTraceEntry{
		Step:   step,
		CallID: call.ID,
		Name:   call.Function.Name,
		Input:  rawInput(call.Function.Arguments),
	}

	report(ctx, "started", ToolEvent{Step: step, CallID: call.ID, Name: entry.Name, Input: entry.Input}, reporter.ToolStarted)

	start := time.Now()
	output, err := r.registry.Execute(ctx, call.Function.Name, call.Function.Arguments, lms)
	if err != nil {
		entry.Error = err.Error()
		entry.Kind = string(tools.KindOf(err))
		l.Warn().Err(err).
			Int("step", step).
			Str("tool", entry.Name).
			Str("kind", entry.Kind).
			Msg("tool call failed")
	} else {
		entry.Output = output
		l.Debug().
			Int("step", step).
			Str("tool", entry.Name).
			Dur("latency", time.Since(start)).
			Msg("tool call completed")
	}

	report(ctx, "completed", ToolEvent{
		Step:   step,
		CallID: call.ID,
		Name:   entry.Name,
		Input:  entry.Input,
		Output: entry.Output,
		Error:  entry.Error,
	}, reporter.ToolCompleted)
	return entry
}

// wantsTools reports whether the reply asks for tool execution
func wantsTools(reply *schema.Message) bool {
	// a tool_calls finish reason without calls has nothing to run
	return len(reply.ToolCalls) > 0
}

func finishReason(reply *schema.Message) string {
	if reply.ResponseMeta == nil {
		return ""
	}
	return reply.ResponseMeta.FinishReason
}

// assignCallIDs gives every call an id so results can be correlated
func assignCallIDs(reply *schema.Message) {
	for i := range reply.ToolCalls {
		if reply.ToolCalls[i].ID == "" {
			reply.ToolCalls[i].ID = id.NewToolCallID()
		}
	}
}

// textOf first text segment of a reply
func textOf(reply *schema.Message) string {
	if reply.Content != "" {
		return reply.Content
	}
	for _, part := range reply.MultiContent {
		if part.Type == schema.ChatMessagePartTypeText && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

func rawInput(arguments string) json.RawMessage {
	if arguments == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(arguments)) {
		return json.RawMessage(arguments)
	}
	quoted, _ := json.Marshal(arguments)
	return quoted
}

type toolFailure struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// toolContent tool message body fed back to the model
func toolContent(entry ToolTraceEntry) string {
	if entry.Error == "" {
		return string(entry.Output)
	}
	body, err := json.Marshal(toolFailure{Error: entry.Error, Kind: entry.Kind})
	if err != nil {
		return fmt.Sprintf(`{"error":%q,"kind":"internal"}`, entry.Error)
	}
	return string(body)
}

// IsFatal reports whether err ends a conversation rather than a single tool call
func IsFatal(err error) bool {
	var modelErr *ModelError
	return errors.As(err, &modelErr) ||
		errors.Is(err, ErrStepLimitExceeded) ||
		errors.Is(err, ErrNoAssistantMessage)
}
