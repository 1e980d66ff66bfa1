package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
	"github.com/talberry/sdsu-study-bot/internal/pkg/canvas"
)

// fakeLMS in-memory LMS that counts calls
type fakeLMS struct {
	calls       int
	assignments []model.Assignment
	pageBody    string
	err         error
}

func (f *fakeLMS) GetCourses(context.Context) ([]model.Course, error) {
	f.calls++
	return []model.Course{{ID: 101, Name: "Calculus I", CourseCode: "MATH 150"}}, f.err
}

func (f *fakeLMS) GetModules(context.Context, int64) ([]model.Module, error) {
	f.calls++
	cid := int64(7)
	return []model.Module{{ID: 1, Name: "Week 1", Items: []model.ModuleItem{{ID: 9, Title: "Essay", Type: model.ModuleItemAssignment, ContentID: &cid}}}}, f.err
}

func (f *fakeLMS) GetModuleItems(context.Context, int64, int64) ([]model.ModuleItem, error) {
	f.calls++
	return []model.ModuleItem{{ID: 9, Title: "Intro", Type: model.ModuleItemPage, PageURL: "intro"}}, f.err
}

func (f *fakeLMS) GetPages(context.Context, int64) ([]model.Page, error) {
	f.calls++
	return []model.Page{{Title: "Syllabus", URL: "syllabus"}}, f.err
}

func (f *fakeLMS) GetPage(_ context.Context, _ int64, pageURL string) (*model.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Page{Title: "Syllabus", URL: pageURL, Body: f.pageBody}, nil
}

func (f *fakeLMS) GetAssignments(context.Context, int64) ([]model.Assignment, error) {
	f.calls++
	return f.assignments, f.err
}

func (f *fakeLMS) GetAssignment(_ context.Context, _ int64, id int64) (*model.Assignment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	desc := "<p>Write 500 words</p>"
	return &model.Assignment{ID: id, Name: "Essay", Description: &desc}, nil
}

func (f *fakeLMS) GetQuizzes(context.Context, int64) ([]model.Quiz, error) {
	f.calls++
	return []model.Quiz{{ID: 3, Title: "Quiz 1", QuizType: model.QuizPractice}}, f.err
}

func (f *fakeLMS) GetQuiz(_ context.Context, _ int64, id int64) (*model.Quiz, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Quiz{ID: id, Title: "Quiz 1"}, nil
}

func (f *fakeLMS) GetFiles(context.Context, int64) ([]model.File, error) {
	f.calls++
	return []model.File{{ID: 44, DisplayName: "syllabus.pdf", ContentType: "application/pdf"}}, f.err
}

func decode(raw json.RawMessage) map[string]any {
	var out map[string]any
	So(json.Unmarshal(raw, &out), ShouldBeNil)
	return out
}

func TestDefaultRegistry(t *testing.T) {
	Convey("NewDefaultRegistry", t, func() {
		r := NewDefaultRegistry()

		Convey("declares tools in a stable order", func() {
			So(r.Names(), ShouldResemble, []string{
				"get_courses", "get_modules", "get_module_items", "get_pages",
				"get_page_content", "get_assignments", "get_assignment_content",
				"get_quizzes", "get_quiz_content", "get_files", "generate_study_pack",
			})
		})

		Convey("schemas match the registered tools", func() {
			infos := r.Infos()
			So(len(infos), ShouldEqual, len(r.Names()))
			for i, info := range infos {
				So(info.Name, ShouldEqual, r.Names()[i])
				So(info.Desc, ShouldNotBeEmpty)
			}
		})

		Convey("only generate_study_pack runs without a credential", func() {
			for _, name := range r.Names() {
				tool, ok := r.Get(name)
				So(ok, ShouldBeTrue)
				So(tool.RequiresCredential(), ShouldEqual, name != ToolGenerateStudyPack)
			}
		})
	})
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	Convey("duplicate tool names are rejected", t, func() {
		_, err := NewRegistry(StudyPackTool(), StudyPackTool())
		So(err, ShouldNotBeNil)
	})
}

func TestRegistry_Execute(t *testing.T) {
	Convey("Registry.Execute", t, func() {
		r := NewDefaultRegistry()
		ctx := context.Background()

		Convey("unknown tool", func() {
			_, err := r.Execute(ctx, "delete_course", `{}`, &fakeLMS{})
			So(errors.Is(err, ErrUnknownTool), ShouldBeTrue)
			So(KindOf(err), ShouldEqual, KindUnknownTool)
		})

		Convey("credentialed tools fail without a credential and never reach the LMS", func() {
			for _, name := range r.Names() {
				if name == ToolGenerateStudyPack {
					continue
				}
				_, err := r.Execute(ctx, name, `{"course_id":101}`, nil)
				So(errors.Is(err, ErrAuthRequired), ShouldBeTrue)
				So(KindOf(err), ShouldEqual, KindAuth)
			}
		})

		Convey("missing required argument", func() {
			lms := &fakeLMS{}
			_, err := r.Execute(ctx, ToolGetAssignments, `{}`, lms)
			var inputErr *InputError
			So(errors.As(err, &inputErr), ShouldBeTrue)
			So(inputErr.Field, ShouldEqual, "course_id")
			So(lms.calls, ShouldEqual, 0)
		})

		Convey("non-integral course id", func() {
			_, err := r.Execute(ctx, ToolGetAssignments, `{"course_id":1.5}`, &fakeLMS{})
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("string course id", func() {
			_, err := r.Execute(ctx, ToolGetModules, `{"course_id":"101"}`, &fakeLMS{})
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("malformed arguments", func() {
			_, err := r.Execute(ctx, ToolGetModules, `{"course_id":`, &fakeLMS{})
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("empty arguments mean no arguments", func() {
			out, err := r.Execute(ctx, ToolGetCourses, "", &fakeLMS{})
			So(err, ShouldBeNil)
			So(decode(out)["count"], ShouldEqual, float64(1))
		})

		Convey("assignments are projected", func() {
			due := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
			lms := &fakeLMS{assignments: []model.Assignment{{ID: 7, Name: "Essay 1", DueAt: &due, CourseID: 101}}}
			out, err := r.Execute(ctx, ToolGetAssignments, `{"course_id":101}`, lms)
			So(err, ShouldBeNil)

			res := decode(out)
			So(res["count"], ShouldEqual, float64(1))
			items := res["assignments"].([]any)
			first := items[0].(map[string]any)
			So(first["name"], ShouldEqual, "Essay 1")
			So(first["due_at"], ShouldEqual, "2025-03-01T23:59:00Z")
			So(first, ShouldNotContainKey, "course_id")
		})

		Convey("page content is fetched by slug and truncated", func() {
			lms := &fakeLMS{pageBody: strings.Repeat("a", maxContentRunes+10)}
			out, err := r.Execute(ctx, ToolGetPageContent, `{"course_id":3,"page_url":"week-1-introduction"}`, lms)
			So(err, ShouldBeNil)
			res := decode(out)
			So(res["url"], ShouldEqual, "week-1-introduction")
			So(res["truncated"], ShouldBeTrue)
			So(len(res["body"].(string)), ShouldEqual, maxContentRunes)
		})

		Convey("blank page slug", func() {
			_, err := r.Execute(ctx, ToolGetPageContent, `{"course_id":3,"page_url":"  "}`, &fakeLMS{})
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("module items keep the page slug", func() {
			out, err := r.Execute(ctx, ToolGetModuleItems, `{"course_id":1,"module_id":2}`, &fakeLMS{})
			So(err, ShouldBeNil)
			item := decode(out)["items"].([]any)[0].(map[string]any)
			So(item["page_url"], ShouldEqual, "intro")
		})

		Convey("LMS failures are wrapped as upstream errors", func() {
			lms := &fakeLMS{err: &canvas.APIError{StatusCode: http.StatusInternalServerError, Body: "boom"}}
			_, err := r.Execute(ctx, ToolGetQuizContent, `{"course_id":1,"quiz_id":3}`, lms)
			var toolErr *ToolError
			So(errors.As(err, &toolErr), ShouldBeTrue)
			So(toolErr.Tool, ShouldEqual, ToolGetQuizContent)
			So(KindOf(err), ShouldEqual, KindUpstream)
		})

		Convey("LMS 401 is an auth failure", func() {
			lms := &fakeLMS{err: &canvas.APIError{StatusCode: http.StatusUnauthorized}}
			_, err := r.Execute(ctx, ToolGetFiles, `{"course_id":1}`, lms)
			So(KindOf(err), ShouldEqual, KindAuth)
		})
	})
}

func TestGenerateStudyPack(t *testing.T) {
	Convey("generate_study_pack", t, func() {
		r := NewDefaultRegistry()
		ctx := context.Background()

		Convey("runs without a credential", func() {
			out, err := r.Execute(ctx, ToolGenerateStudyPack, `{"content":"Limits and  derivatives\nchain rule","material_type":"combined"}`, nil)
			So(err, ShouldBeNil)
			res := decode(out)
			So(res["status"], ShouldEqual, "ready")
			So(res["material_type"], ShouldEqual, "combined")
			So(res["word_count"], ShouldEqual, float64(5))
			So(res["summary"], ShouldEqual, "Limits and derivatives chain rule")
		})

		Convey("rejects an unknown material type", func() {
			_, err := r.Execute(ctx, ToolGenerateStudyPack, `{"content":"x","material_type":"essay"}`, nil)
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("rejects empty content", func() {
			_, err := r.Execute(ctx, ToolGenerateStudyPack, `{"content":"","material_type":"page"}`, nil)
			So(KindOf(err), ShouldEqual, KindInput)
		})

		Convey("summaries are bounded", func() {
			out, err := r.Execute(ctx, ToolGenerateStudyPack, `{"content":"`+strings.Repeat("word ", 200)+`","material_type":"page"}`, nil)
			So(err, ShouldBeNil)
			So(strings.HasSuffix(decode(out)["summary"].(string), "..."), ShouldBeTrue)
		})
	})
}
