package tools

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"

	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
)

// maxContentRunes caps HTML bodies handed back to the model
const maxContentRunes = 20000

const (
	ToolGetCourses           = "get_courses"
	ToolGetModules           = "get_modules"
	ToolGetModuleItems       = "get_module_items"
	ToolGetPages             = "get_pages"
	ToolGetPageContent       = "get_page_content"
	ToolGetAssignments       = "get_assignments"
	ToolGetAssignmentContent = "get_assignment_content"
	ToolGetQuizzes           = "get_quizzes"
	ToolGetQuizContent       = "get_quiz_content"
	ToolGetFiles             = "get_files"
)

var courseIDParam = Param{Name: "course_id", Type: schema.Integer, Desc: "The Canvas course ID (obtained from get_courses)", Required: true}

type courseInput struct {
	CourseID int64 `json:"course_id"`
}

type moduleItemsInput struct {
	CourseID int64 `json:"course_id"`
	ModuleID int64 `json:"module_id"`
}

type pageInput struct {
	CourseID int64  `json:"course_id"`
	PageURL  string `json:"page_url"`
}

type assignmentInput struct {
	CourseID     int64 `json:"course_id"`
	AssignmentID int64 `json:"assignment_id"`
}

type quizInput struct {
	CourseID int64 `json:"course_id"`
	QuizID   int64 `json:"quiz_id"`
}

// courseView projection of model.Course
type courseView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description,omitempty"`
}

type moduleItemView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	ContentID *int64 `json:"content_id,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
}

type moduleView struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Position int              `json:"position"`
	Items    []moduleItemView `json:"items"`
}

type pageView struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type assignmentView struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	DueAt          *time.Time `json:"due_at"`
	UnlockAt       *time.Time `json:"unlock_at,omitempty"`
	LockAt         *time.Time `json:"lock_at,omitempty"`
	PointsPossible *float64   `json:"points_possible,omitempty"`
}

type quizView struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	QuizType      string     `json:"quiz_type"`
	DueAt         *time.Time `json:"due_at"`
	QuestionCount int        `json:"question_count,omitempty"`
}

type fileView struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// CanvasTools returns the LMS read tools in declaration order
func CanvasTools() []Tool {
	return []Tool{
		NewFuncTool(ToolGetCourses,
			"Retrieves all active courses for the user. Use this first to see what courses are available. Returns course IDs, names, codes, and descriptions.",
			true, nil, getCourses),
		NewFuncTool(ToolGetModules,
			"Retrieves all modules for a specific course, including module items (pages, assignments, files, quizzes). Use this to understand the course structure and find available content. Returns modules with their items.",
			true, []Param{courseIDParam}, getModules),
		NewFuncTool(ToolGetModuleItems,
			"Lists the items of one module. Use this when a module's items were not included by get_modules. Items carry content_id for assignments, quizzes and files, and page_url for pages.",
			true, []Param{
				courseIDParam,
				{Name: "module_id", Type: schema.Integer, Desc: "The module ID (obtained from get_modules)", Required: true},
			}, getModuleItems),
		NewFuncTool(ToolGetPages,
			"Lists all pages in a course. Use this to see what pages are available before fetching specific page content. Returns page titles and URLs (page slugs).",
			true, []Param{courseIDParam}, getPages),
		NewFuncTool(ToolGetPageContent,
			"Fetches the full HTML content of a specific page. Use the page_url (slug) from get_pages or module items. The page_url is a string identifier, not a number.",
			true, []Param{
				courseIDParam,
				{Name: "page_url", Type: schema.String, Desc: "The page URL slug (e.g., 'syllabus', 'week-1-introduction'). This is a string identifier, not a number. Get this from get_pages or module items.", Required: true},
			}, getPageContent),
		NewFuncTool(ToolGetAssignments,
			"Lists all assignments in a course. Use this to see what assignments are available, their due dates, and IDs before fetching specific assignment content.",
			true, []Param{courseIDParam}, getAssignments),
		NewFuncTool(ToolGetAssignmentContent,
			"Fetches the full content and details of a specific assignment including description, due dates, and requirements. Use assignment_id from get_assignments or module items.",
			true, []Param{
				courseIDParam,
				{Name: "assignment_id", Type: schema.Integer, Desc: "The assignment ID (obtained from get_assignments or module items)", Required: true},
			}, getAssignmentContent),
		NewFuncTool(ToolGetQuizzes,
			"Lists all quizzes in a course. Use this to see what quizzes are available, their types, and IDs before fetching specific quiz content.",
			true, []Param{courseIDParam}, getQuizzes),
		NewFuncTool(ToolGetQuizContent,
			"Fetches the full content and details of a specific quiz including description, questions, and quiz type. Use quiz_id from get_quizzes or module items.",
			true, []Param{
				courseIDParam,
				{Name: "quiz_id", Type: schema.Integer, Desc: "The quiz ID (obtained from get_quizzes or module items)", Required: true},
			}, getQuizContent),
		NewFuncTool(ToolGetFiles,
			"Lists all files in a course. Use this to see what files (PDFs, documents, etc.) are available. Returns file metadata including display names, URLs, and content types.",
			true, []Param{courseIDParam}, getFiles),
	}
}

func getCourses(ctx context.Context, lms LMS, _ struct{}) (any, error) {
	courses, err := lms.GetCourses(ctx)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetCourses, Op: "list courses", Err: err}
	}
	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, courseView{ID: c.ID, Name: c.Name, CourseCode: c.CourseCode, Description: c.Description})
	}
	return map[string]any{"courses": views, "count": len(views)}, nil
}

func getModules(ctx context.Context, lms LMS, in courseInput) (any, error) {
	modules, err := lms.GetModules(ctx, in.CourseID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetModules, Op: "list modules", Err: err}
	}
	views := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, moduleView{ID: m.ID, Name: m.Name, Position: m.Position, Items: moduleItemViews(m.Items)})
	}
	return map[string]any{"modules": views, "count": len(views)}, nil
}

func getModuleItems(ctx context.Context, lms LMS, in moduleItemsInput) (any, error) {
	items, err := lms.GetModuleItems(ctx, in.CourseID, in.ModuleID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetModuleItems, Op: "list module items", Err: err}
	}
	views := moduleItemViews(items)
	return map[string]any{"items": views, "count": len(views)}, nil
}

func getPages(ctx context.Context, lms LMS, in courseInput) (any, error) {
	pages, err := lms.GetPages(ctx, in.CourseID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetPages, Op: "list pages", Err: err}
	}
	views := make([]pageView, 0, len(pages))
	for _, p := range pages {
		views = append(views, pageView{Title: p.Title, URL: p.URL, UpdatedAt: p.UpdatedAt})
	}
	return map[string]any{"pages": views, "count": len(views)}, nil
}

func getPageContent(ctx context.Context, lms LMS, in pageInput) (any, error) {
	page, err := lms.GetPage(ctx, in.CourseID, in.PageURL)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetPageContent, Op: "get page " + in.PageURL, Err: err}
	}
	body, truncated := truncate(page.Body)
	return map[string]any{
		"title":      page.Title,
		"url":        page.URL,
		"updated_at": page.UpdatedAt,
		"body":       body,
		"truncated":  truncated,
	}, nil
}

func getAssignments(ctx context.Context, lms LMS, in courseInput) (any, error) {
	assignments, err := lms.GetAssignments(ctx, in.CourseID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetAssignments, Op: "list assignments", Err: err}
	}
	views := make([]assignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, assignmentView{
			ID:             a.ID,
			Name:           a.Name,
			DueAt:          a.DueAt,
			UnlockAt:       a.UnlockAt,
			LockAt:         a.LockAt,
			PointsPossible: a.PointsPossible,
		})
	}
	return map[string]any{"assignments": views, "count": len(views)}, nil
}

func getAssignmentContent(ctx context.Context, lms LMS, in assignmentInput) (any, error) {
	a, err := lms.GetAssignment(ctx, in.CourseID, in.AssignmentID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetAssignmentContent, Op: "get assignment", Err: err}
	}
	description, truncated := truncate(deref(a.Description))
	return map[string]any{
		"id":              a.ID,
		"name":            a.Name,
		"due_at":          a.DueAt,
		"unlock_at":       a.UnlockAt,
		"lock_at":         a.LockAt,
		"points_possible": a.PointsPossible,
		"description":     description,
		"truncated":       truncated,
	}, nil
}

func getQuizzes(ctx context.Context, lms LMS, in courseInput) (any, error) {
	quizzes, err := lms.GetQuizzes(ctx, in.CourseID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetQuizzes, Op: "list quizzes", Err: err}
	}
	views := make([]quizView, 0, len(quizzes))
	for _, q := range quizzes {
		views = append(views, quizView{ID: q.ID, Title: q.Title, QuizType: string(q.QuizType), DueAt: q.DueAt, QuestionCount: q.QuestionCount})
	}
	return map[string]any{"quizzes": views, "count": len(views)}, nil
}

func getQuizContent(ctx context.Context, lms LMS, in quizInput) (any, error) {
	q, err := lms.GetQuiz(ctx, in.CourseID, in.QuizID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetQuizContent, Op: "get quiz", Err: err}
	}
	description, truncated := truncate(deref(q.Description))
	return map[string]any{
		"id":              q.ID,
		"title":           q.Title,
		"quiz_type":       q.QuizType,
		"due_at":          q.DueAt,
		"question_count":  q.QuestionCount,
		"points_possible": q.PointsPossible,
		"time_limit":      q.TimeLimit,
		"description":     description,
		"truncated":       truncated,
	}, nil
}

func getFiles(ctx context.Context, lms LMS, in courseInput) (any, error) {
	files, err := lms.GetFiles(ctx, in.CourseID)
	if err != nil {
		return nil, &ToolError{Tool: ToolGetFiles, Op: "list files", Err: err}
	}
	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{ID: f.ID, DisplayName: f.DisplayName, ContentType: f.ContentType, Size: f.Size, URL: f.URL})
	}
	return map[string]any{"files": views, "count": len(views)}, nil
}

func moduleItemViews(items []model.ModuleItem) []moduleItemView {
	views := make([]moduleItemView, 0, len(items))
	for _, it := range items {
		views = append(views, moduleItemView{
			ID:        it.ID,
			Title:     it.Title,
			Type:      string(it.Type),
			ContentID: it.ContentID,
			PageURL:   it.PageURL,
		})
	}
	return views
}

func truncate(s string) (string, bool) {
	r := []rune(s)
	if len(r) <= maxContentRunes {
		return s, false
	}
	return string(r[:maxContentRunes]), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
