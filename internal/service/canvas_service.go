package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	"github.com/talberry/sdsu-study-bot/internal/config"
	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
)

var (
	// ErrMissingParam a required query parameter was absent
	ErrMissingParam = errors.New("missing required parameter")
)

// CanvasReader full Canvas read surface used by the services
type CanvasReader interface {
	tools.LMS
	GetCourse(ctx context.Context, courseID int64) (*model.Course, error)
	GetModule(ctx context.Context, courseID, moduleID int64) (*model.Module, error)
	GetFile(ctx context.Context, fileID int64) (*model.File, error)
}

// ClientFactory builds a per-request Canvas client from a token
type ClientFactory func(token string) (CanvasReader, error)

// NewClientFactory returns a factory bound to cfg; sc may be nil
func NewClientFactory(cfg *config.CanvasConfig, sc canvas.SnapshotCache) ClientFactory {
	return func(token string) (CanvasReader, error) {
		var opts []canvas.Option
		if sc != nil && cfg != nil {
			opts = append(opts, canvas.WithCache(sc, cfg.CacheTTL))
		}
		c, err := canvas.NewClient(token, cfg, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// CanvasQuery proxy request parameters
type CanvasQuery struct {
	Token        string
	CourseID     int64
	ModuleID     int64
	ResourceID   int64  // assignmentId, quizId or fileId
	PageURL      string // page slug
	ModuleItemID string // annotation for single-resource fetches
}

// ProxyResult proxy answer. Exactly one of Value and Message is set.
type ProxyResult struct {
	Key     string // response field name, e.g. "assignment" or "assignments"
	Value   any
	Message string // set when a collection is empty
}

// CanvasService thin read proxy over the Canvas API
type CanvasService struct {
	clients ClientFactory
}

// NewCanvasService creates the proxy service
func NewCanvasService(clients ClientFactory) *CanvasService {
	return &CanvasService{clients: clients}
}

func (s *CanvasService) client(q *CanvasQuery, needCourse bool) (CanvasReader, error) {
	if q.Token == "" {
		return nil, canvas.ErrMissingToken
	}
	if needCourse && q.CourseID <= 0 {
		return nil, fmt.Errorf("%w: courseId", ErrMissingParam)
	}
	return s.clients(q.Token)
}

// Courses one course when CourseID is set, else the active courses
func (s *CanvasService) Courses(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, false)
	if err != nil {
		return nil, err
	}

	if q.CourseID > 0 {
		course, err := c.GetCourse(ctx, q.CourseID)
		if err != nil {
			return nil, err
		}
		return &ProxyResult{Key: "course", Value: course}, nil
	}

	courses, err := c.GetCourses(ctx)
	if err != nil {
		return nil, err
	}
	return list("courses", courses, "No courses found for the current user."), nil
}

// Modules one module when ModuleID is set, else every module of the course
func (s *CanvasService) Modules(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, true)
	if err != nil {
		return nil, err
	}

	if q.ModuleID > 0 {
		m, err := c.GetModule(ctx, q.CourseID, q.ModuleID)
		if err != nil {
			return nil, err
		}
		return &ProxyResult{Key: "module", Value: m}, nil
	}

	modules, err := c.GetModules(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	return list("modules", modules, "No modules found for this course."), nil
}

// Assignments by id, by module, or for the whole course
func (s *CanvasService) Assignments(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, true)
	if err != nil {
		return nil, err
	}

	switch {
	case q.ResourceID > 0:
		a, err := c.GetAssignment(ctx, q.CourseID, q.ResourceID)
		if err != nil {
			return nil, err
		}
		a.ModuleItemID = q.ModuleItemID
		return &ProxyResult{Key: "assignment", Value: a}, nil
	case q.ModuleID > 0:
		return s.moduleItems(ctx, c, q, model.ModuleItemAssignment, "assignments")
	}

	assignments, err := c.GetAssignments(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	return list("assignments", assignments, "No assignments found for this course."), nil
}

// Pages by slug, by module, or for the whole course
func (s *CanvasService) Pages(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, true)
	if err != nil {
		return nil, err
	}

	switch {
	case q.PageURL != "":
		p, err := c.GetPage(ctx, q.CourseID, q.PageURL)
		if err != nil {
			return nil, err
		}
		p.ModuleItemID = q.ModuleItemID
		return &ProxyResult{Key: "page", Value: p}, nil
	case q.ModuleID > 0:
		return s.moduleItems(ctx, c, q, model.ModuleItemPage, "pages")
	}

	pages, err := c.GetPages(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	return list("pages", pages, "No pages found for this course."), nil
}

// Quizzes by id, by module, or for the whole course
func (s *CanvasService) Quizzes(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, true)
	if err != nil {
		return nil, err
	}

	switch {
	case q.ResourceID > 0:
		quiz, err := c.GetQuiz(ctx, q.CourseID, q.ResourceID)
		if err != nil {
			return nil, err
		}
		quiz.ModuleItemID = q.ModuleItemID
		return &ProxyResult{Key: "quiz", Value: quiz}, nil
	case q.ModuleID > 0:
		return s.moduleItems(ctx, c, q, model.ModuleItemQuiz, "quizzes")
	}

	quizzes, err := c.GetQuizzes(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	return list("quizzes", quizzes, "No quizzes found for this course."), nil
}

// Files by id, by module, or for the whole course.
// A single file needs no course.
func (s *CanvasService) Files(ctx context.Context, q *CanvasQuery) (*ProxyResult, error) {
	c, err := s.client(q, q.ResourceID <= 0)
	if err != nil {
		return nil, err
	}

	switch {
	case q.ResourceID > 0:
		f, err := c.GetFile(ctx, q.ResourceID)
		if err != nil {
			return nil, err
		}
		f.ModuleItemID = q.ModuleItemID
		return &ProxyResult{Key: "file", Value: f}, nil
	case q.ModuleID > 0:
		return s.moduleItems(ctx, c, q, model.ModuleItemFile, "files")
	}

	files, err := c.GetFiles(ctx, q.CourseID)
	if err != nil {
		return nil, err
	}
	return list("files", files, "No files found for this course."), nil
}

// moduleItems lists the module's items of one type
func (s *CanvasService) moduleItems(ctx context.Context, c CanvasReader, q *CanvasQuery, kind model.ModuleItemType, key string) (*ProxyResult, error) {
	items, err := c.GetModuleItems(ctx, q.CourseID, q.ModuleID)
	if err != nil {
		return nil, err
	}

	matched := make([]model.ModuleItem, 0, len(items))
	for _, it := range items {
		if it.Type == kind {
			matched = append(matched, it)
		}
	}
	return list(key, matched, fmt.Sprintf("No %s found in module %d.", key, q.ModuleID)), nil
}

func list[T any](key string, items []T, empty string) *ProxyResult {
	if len(items) == 0 {
		return &ProxyResult{Key: key, Message: empty}
	}
	return &ProxyResult{Key: key, Value: items}
}
