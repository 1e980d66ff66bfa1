package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ToolGenerateStudyPack local tool, never touches the LMS
const ToolGenerateStudyPack = "generate_study_pack"

// MaterialTypes accepted by generate_study_pack
var MaterialTypes = []string{"page", "assignment", "quiz", "combined"}

const studyPackSummaryRunes = 280

type studyPackInput struct {
	Content      string `json:"content"`
	MaterialType string `json:"material_type"`
}

// StudyPackResult acknowledgement returned to the model
type StudyPackResult struct {
	Status        string `json:"status"`
	MaterialType  string `json:"material_type"`
	ContentLength int    `json:"content_length"`
	WordCount     int    `json:"word_count"`
	Summary       string `json:"summary"`
}

// StudyPackTool returns generate_study_pack
func StudyPackTool() Tool {
	return NewFuncTool(ToolGenerateStudyPack,
		"Generates study materials from retrieved content. Use this after gathering course content (pages, assignments, quizzes) to create study guides, summaries, flashcards, or other study aids.",
		false, []Param{
			{Name: "content", Type: schema.String, Desc: "The study material content to process (can be combined content from multiple sources)", Required: true},
			{Name: "material_type", Type: schema.String, Desc: "The type of material: 'page' for course pages, 'assignment' for assignments, 'quiz' for quizzes, or 'combined' for multiple sources", Required: true, Enum: MaterialTypes},
		}, generateStudyPack)
}

func generateStudyPack(_ context.Context, _ LMS, in studyPackInput) (any, error) {
	content := strings.TrimSpace(in.Content)
	words := strings.Fields(content)

	summary := strings.Join(words, " ")
	if r := []rune(summary); len(r) > studyPackSummaryRunes {
		summary = string(r[:studyPackSummaryRunes]) + "..."
	}

	return &StudyPackResult{
		Status:        "ready",
		MaterialType:  in.MaterialType,
		ContentLength: len([]rune(content)),
		WordCount:     len(words),
		Summary:       summary,
	}, nil
}

// NewDefaultRegistry registry with every tool the assistant may call
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(append(CanvasTools(), StudyPackTool())...)
	if err != nil {
		// names are compile-time constants
		panic(err)
	}
	return r
}
