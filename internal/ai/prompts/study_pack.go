package prompts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
)

const studyPackTemplate = `You are an academic study assistant. Create a concise, structured study guide from this Canvas course snapshot.

Course ID: {{.course_id}}

### Modules
{{range .modules}}- {{.}}
{{else}}None
{{end}}
### Assignments
{{range .assignments}}- {{.}}
{{else}}None
{{end}}
### Pages
{{range .pages}}- {{.}}
{{else}}None
{{end}}
### Quizzes
{{range .quizzes}}- {{.}}
{{else}}None
{{end}}
Output format:
- A short title
- Key topics (bullets)
- What to review (bullets)
- Upcoming deadlines/assessments if visible (bullets)
- 3-5 suggested practice prompts
Keep it under ~400 words, plain text.`

// CourseSnapshot course content summarised into a study pack
type CourseSnapshot struct {
	CourseID    int64
	Modules     []model.Module
	Assignments []model.Assignment
	Pages       []model.Page
	Quizzes     []model.Quiz
}

var studyPackTpl = prompt.FromMessages(schema.GoTemplate, schema.UserMessage(studyPackTemplate))

// StudyPack renders the study guide request for a course snapshot
func StudyPack(ctx context.Context, snap *CourseSnapshot) (string, error) {
	msgs, err := studyPackTpl.Format(ctx, snapshotVars(snap))
	if err != nil {
		return "", fmt.Errorf("render study pack prompt: %w", err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("render study pack prompt: no messages")
	}
	return msgs[0].Content, nil
}

func snapshotVars(snap *CourseSnapshot) map[string]any {
	modules := make([]string, 0, len(snap.Modules))
	for _, m := range snap.Modules {
		modules = append(modules, orDefault(m.Name, "Untitled Module"))
	}

	assignments := make([]string, 0, len(snap.Assignments))
	for _, a := range snap.Assignments {
		line := orDefault(a.Name, "Unnamed Assignment")
		if a.DueAt != nil {
			line += " (due " + a.DueAt.Format("Jan 2, 2006") + ")"
		}
		assignments = append(assignments, line)
	}

	pages := make([]string, 0, len(snap.Pages))
	for _, p := range snap.Pages {
		pages = append(pages, orDefault(p.Title, orDefault(p.URL, "Untitled Page")))
	}

	quizzes := make([]string, 0, len(snap.Quizzes))
	for _, q := range snap.Quizzes {
		quizzes = append(quizzes, orDefault(q.Title, "Untitled Quiz"))
	}

	return map[string]any{
		"course_id":   snap.CourseID,
		"modules":     modules,
		"assignments": assignments,
		"pages":       pages,
		"quizzes":     quizzes,
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
