package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	"github.com/talberry/sdsu-study-bot/internal/model"
	"github.com/talberry/sdsu-study-bot/internal/pkg/ctxutil"
	"github.com/talberry/sdsu-study-bot/internal/pkg/id"
	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
	"github.com/talberry/sdsu-study-bot/internal/repository"
)

// ErrEmptyMessage chat request without a message
var ErrEmptyMessage = errors.New("message is required")

const runLogTimeout = 5 * time.Second

// ConversationRunner runs one conversation. Implemented by *agent.Runner.
type ConversationRunner interface {
	Run(ctx context.Context, userText string, lms tools.LMS, reporter agent.ProgressReporter) (*agent.Result, error)
}

// ChatInput one chat turn
type ChatInput struct {
	Message  string
	Token    string // empty when the student has not linked Canvas
	Stream   bool
	Reporter agent.ProgressReporter
}

// ChatService builds the per-request LMS client, runs the loop and logs the run
type ChatService struct {
	runner  ConversationRunner
	clients ClientFactory
	runs    repository.ChatRunRepository
}

// NewChatService creates the chat service; runs may be nil
func NewChatService(runner ConversationRunner, clients ClientFactory, runs repository.ChatRunRepository) *ChatService {
	return &ChatService{
		runner:  runner,
		clients: clients,
		runs:    runs,
	}
}

// Chat answers one message
func (s *ChatService) Chat(ctx context.Context, in *ChatInput) (*agent.Result, error) {
	if in == nil || strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyMessage
	}
	l := logger.FromContext(ctx)

	// a blank token is no credential at all
	in.Token = strings.TrimSpace(in.Token)

	// a nil interface, never a nil *canvas.Client, marks the missing credential
	var lms tools.LMS
	if in.Token != "" {
		c, err := s.clients(in.Token)
		if err != nil {
			return nil, err
		}
		lms = c
	}

	start := time.Now()
	res, err := s.runner.Run(ctx, in.Message, lms, in.Reporter)
	elapsed := time.Since(start)

	s.record(ctx, in, res, err, elapsed)

	if err != nil {
		l.Error().Err(err).Dur("elapsed", elapsed).Msg("chat failed")
		return nil, err
	}

	l.Info().
		Int("steps", res.Steps).
		Int("tool_calls", len(res.ToolTrace)).
		Bool("authenticated", lms != nil).
		Dur("elapsed", elapsed).
		Msg("chat completed")
	return res, nil
}

// record writes the audit entry; failures are logged only
func (s *ChatService) record(ctx context.Context, in *ChatInput, res *agent.Result, runErr error, elapsed time.Duration) {
	if s.runs == nil {
		return
	}

	run := &model.ChatRun{
		ID:            id.New(),
		Authenticated: in.Token != "",
		Stream:        in.Stream,
		Status:        model.ChatRunSucceeded,
		DurationMs:    elapsed.Milliseconds(),
		CreatedAt:     time.Now(),
	}
	if requestID, ok := ctxutil.GetRequestID(ctx); ok {
		run.RequestID = requestID
	}
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		run.Status = model.ChatRunCancelled
		run.Error = runErr.Error()
	case runErr != nil:
		run.Status = model.ChatRunFailed
		run.Error = runErr.Error()
	}
	if res != nil {
		run.Steps = res.Steps
		for _, t := range res.ToolTrace {
			run.ToolCalls = append(run.ToolCalls, model.ChatRunTool{Step: t.Step, Name: t.Name, Kind: t.Kind, Error: t.Error})
		}
	}

	// the request context may already be cancelled by a disconnect
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runLogTimeout)
	defer cancel()
	if err := s.runs.Create(writeCtx, run); err != nil {
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Msg("failed to record chat run")
	}
}

// RecentRuns newest audit entries; nil repository yields none
func (s *ChatService) RecentRuns(ctx context.Context, limit int64) ([]*model.ChatRun, error) {
	if s.runs == nil {
		return []*model.ChatRun{}, nil
	}
	return s.runs.ListRecent(ctx, limit)
}

// GetRun one audit entry
func (s *ChatService) GetRun(ctx context.Context, runID string) (*model.ChatRun, error) {
	if s.runs == nil {
		return nil, repository.ErrChatRunNotFound
	}
	return s.runs.FindByID(ctx, runID)
}
