// Package canvas holds read-only snapshots of Canvas LMS records.
// Field names follow the Canvas REST API wire format.
package canvas

import "time"

// ModuleItemType Canvas module item kind
type ModuleItemType string

const (
	ModuleItemFile         ModuleItemType = "File"
	ModuleItemPage         ModuleItemType = "Page"
	ModuleItemDiscussion   ModuleItemType = "Discussion"
	ModuleItemAssignment   ModuleItemType = "Assignment"
	ModuleItemQuiz         ModuleItemType = "Quiz"
	ModuleItemExternalURL  ModuleItemType = "ExternalUrl"
	ModuleItemExternalTool ModuleItemType = "ExternalTool"
	ModuleItemSubHeader    ModuleItemType = "SubHeader"
)

// QuizType Canvas quiz kind
type QuizType string

const (
	QuizPractice     QuizType = "practice_quiz"
	QuizAssignment   QuizType = "assignment"
	QuizGradedSurvey QuizType = "graded_survey"
	QuizSurvey       QuizType = "survey"
)

// Course course
type Course struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	CourseCode  string     `json:"course_code"`
	Description string     `json:"description,omitempty"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Module course module
type Module struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Position   int          `json:"position"`
	ItemsCount int          `json:"items_count"`
	ItemsURL   string       `json:"items_url"`
	Items      []ModuleItem `json:"items,omitempty"`
	CourseID   int64        `json:"course_id,omitempty"`
}

// ModuleItem entry inside a module
type ModuleItem struct {
	ID          int64          `json:"id"`
	ModuleID    int64          `json:"module_id"`
	Position    int            `json:"position"`
	Title       string         `json:"title"`
	Type        ModuleItemType `json:"type"`
	ContentID   *int64         `json:"content_id"`
	HTMLURL     string         `json:"html_url"`
	ExternalURL string         `json:"external_url,omitempty"`
	PageURL     string         `json:"page_url,omitempty"`
}

// Assignment assignment
type Assignment struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	DueAt          *time.Time `json:"due_at"`
	UnlockAt       *time.Time `json:"unlock_at"`
	LockAt         *time.Time `json:"lock_at"`
	PointsPossible *float64   `json:"points_possible,omitempty"`
	HTMLURL        string     `json:"html_url,omitempty"`
	CourseID       int64      `json:"course_id"`

	// ModuleItemID set only when resolved through a module item
	ModuleItemID string `json:"moduleItemId,omitempty"`
}

// Quiz quiz
type Quiz struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	QuizType       QuizType   `json:"quiz_type"`
	DueAt          *time.Time `json:"due_at"`
	QuestionCount  int        `json:"question_count,omitempty"`
	PointsPossible *float64   `json:"points_possible,omitempty"`
	TimeLimit      *int       `json:"time_limit,omitempty"`
	CourseID       int64      `json:"course_id,omitempty"`

	// ModuleItemID set only when resolved through a module item
	ModuleItemID string `json:"moduleItemId,omitempty"`
}

// Page wiki page
type Page struct {
	PageID    int64      `json:"page_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	URL       string     `json:"url"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// ModuleItemID set only when resolved through a module item
	ModuleItemID string `json:"moduleItemId,omitempty"`
}

// File course file
type File struct {
	ID          int64      `json:"id"`
	DisplayName string     `json:"display_name"`
	Filename    string     `json:"filename"`
	URL         string     `json:"url"`
	ContentType string     `json:"content-type"`
	Size        int64      `json:"size"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	FolderID    *int64     `json:"folder_id"`

	// ModuleItemID set only when resolved through a module item
	ModuleItemID string `json:"moduleItemId,omitempty"`
}
