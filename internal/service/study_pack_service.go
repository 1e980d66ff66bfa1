package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/sync/errgroup"

	"github.com/talberry/sdsu-study-bot/internal/ai/agent"
	"github.com/talberry/sdsu-study-bot/internal/ai/prompts"
	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
	"github.com/talberry/sdsu-study-bot/internal/pkg/logger"
)

// emptySummary returned when the model answers with no text
const emptySummary = "The assistant did not return a summary."

// StudyPackService snapshots a course and asks the model for a study guide
type StudyPackService struct {
	model   model.BaseChatModel
	clients ClientFactory
}

// NewStudyPackService creates the study pack service
func NewStudyPackService(cm model.BaseChatModel, clients ClientFactory) *StudyPackService {
	return &StudyPackService{
		model:   cm,
		clients: clients,
	}
}

// Generate builds a plain-text study guide for a course
func (s *StudyPackService) Generate(ctx context.Context, token string, courseID int64) (string, error) {
	if token == "" {
		return "", canvas.ErrMissingToken
	}
	if courseID <= 0 {
		return "", fmt.Errorf("%w: courseId", ErrMissingParam)
	}
	l := logger.FromContext(ctx).With().Int64("course_id", courseID).Logger()

	c, err := s.clients(token)
	if err != nil {
		return "", err
	}

	snap, err := snapshot(ctx, c, courseID)
	if err != nil {
		l.Error().Err(err).Msg("course snapshot failed")
		return "", err
	}

	text, err := prompts.StudyPack(ctx, snap)
	if err != nil {
		return "", err
	}

	reply, err := s.model.Generate(ctx, []*schema.Message{schema.UserMessage(text)})
	if err != nil {
		l.Error().Err(err).Msg("study pack generation failed")
		return "", &agent.ModelError{Step: 1, Err: err}
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return emptySummary, nil
	}

	l.Info().
		Int("modules", len(snap.Modules)).
		Int("assignments", len(snap.Assignments)).
		Int("pages", len(snap.Pages)).
		Int("quizzes", len(snap.Quizzes)).
		Msg("study pack generated")
	return reply.Content, nil
}

// snapshot fetches the four collections concurrently; the first failure cancels the rest
func snapshot(ctx context.Context, c CanvasReader, courseID int64) (*prompts.CourseSnapshot, error) {
	snap := &prompts.CourseSnapshot{CourseID: courseID}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Modules, err = c.GetModules(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		snap.Assignments, err = c.GetAssignments(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		snap.Pages, err = c.GetPages(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		snap.Quizzes, err = c.GetQuizzes(gctx, courseID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
