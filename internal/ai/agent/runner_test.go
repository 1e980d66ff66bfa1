package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/talberry/sdsu-study-bot/internal/ai/tools"
	canvasmodel "github.com/talberry/sdsu-study-bot/internal/model/canvas"
)

// scriptedModel answers each Generate with the next scripted reply
type scriptedModel struct {
	mu     sync.Mutex
	script func(call int, input []*schema.Message) (*schema.Message, error)
	calls  int
	inputs [][]*schema.Message
	bound  []*schema.ToolInfo
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.inputs = append(m.inputs, append([]*schema.Message(nil), input...))
	return m.script(m.calls, input)
}

func (m *scriptedModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedModel) WithTools(infos []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.bound = infos
	return m, nil
}

func toolCall(callID, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: callID, Function: schema.FunctionCall{Name: name, Arguments: args}}
}

func callsTools(calls ...schema.ToolCall) *schema.Message {
	return &schema.Message{
		Role:         schema.Assistant,
		ToolCalls:    calls,
		ResponseMeta: &schema.ResponseMeta{FinishReason: "tool_calls"},
	}
}

// stubLMS serves course 101 with one assignment
type stubLMS struct {
	tools.LMS
	mu    sync.Mutex
	calls []string
	delay time.Duration
}

func (s *stubLMS) record(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
	time.Sleep(s.delay)
}

func (s *stubLMS) GetCourses(context.Context) ([]canvasmodel.Course, error) {
	s.record("courses")
	return []canvasmodel.Course{{ID: 101, Name: "Calculus I"}}, nil
}

func (s *stubLMS) GetAssignments(_ context.Context, courseID int64) ([]canvasmodel.Assignment, error) {
	s.record("assignments")
	due := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	return []canvasmodel.Assignment{{ID: 7, Name: "Essay 1", DueAt: &due, CourseID: courseID}}, nil
}

func (s *stubLMS) GetQuizzes(context.Context, int64) ([]canvasmodel.Quiz, error) {
	s.record("quizzes")
	return []canvasmodel.Quiz{{ID: 3, Title: "Quiz 1"}}, nil
}

func (s *stubLMS) GetFiles(context.Context, int64) ([]canvasmodel.File, error) {
	s.record("files")
	return []canvasmodel.File{}, nil
}

func newRunner(m *scriptedModel, opts ...Option) *Runner {
	r, err := NewRunner(m, tools.NewDefaultRegistry(), opts...)
	So(err, ShouldBeNil)
	return r
}

// toolMessages tool turns of the last recorded model input
func toolMessages(m *scriptedModel) []*schema.Message {
	last := m.inputs[len(m.inputs)-1]
	var out []*schema.Message
	for _, msg := range last {
		if msg.Role == schema.Tool {
			out = append(out, msg)
		}
	}
	return out
}

func TestRunner_Run(t *testing.T) {
	Convey("Runner.Run", t, func() {
		ctx := context.Background()

		Convey("binds every registered tool once", func() {
			m := &scriptedModel{script: func(int, []*schema.Message) (*schema.Message, error) {
				return schema.AssistantMessage("hi", nil), nil
			}}
			newRunner(m)
			So(len(m.bound), ShouldEqual, len(tools.NewDefaultRegistry().Names()))
		})

		Convey("answers without tools in one step", func() {
			m := &scriptedModel{script: func(int, []*schema.Message) (*schema.Message, error) {
				return schema.AssistantMessage("Hello! Which course are we studying?", nil), nil
			}}
			res, err := newRunner(m).Run(ctx, "hi", nil, nil)
			So(err, ShouldBeNil)
			So(res.Text, ShouldEqual, "Hello! Which course are we studying?")
			So(res.Steps, ShouldEqual, 1)
			So(res.ToolTrace, ShouldNotBeNil)
			So(res.ToolTrace, ShouldBeEmpty)

			Convey("and prepends the system prompt", func() {
				So(m.inputs[0][0].Role, ShouldEqual, schema.System)
				So(m.inputs[0][1].Role, ShouldEqual, schema.User)
				So(m.inputs[0][1].Content, ShouldEqual, "hi")
			})
		})

		Convey("stops after exactly MaxSteps model calls", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				return callsTools(toolCall("c", tools.ToolGetCourses, `{}`)), nil
			}}
			res, err := newRunner(m, WithMaxSteps(3)).Run(ctx, "loop forever", &stubLMS{}, nil)
			So(errors.Is(err, ErrStepLimitExceeded), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "exceeded safety step threshold")
			So(m.calls, ShouldEqual, 3)

			Convey("and keeps the runaway tool sequence", func() {
				So(res, ShouldNotBeNil)
				So(res.Steps, ShouldEqual, 3)
				So(res.Text, ShouldBeEmpty)
				So(res.ToolTrace, ShouldHaveLength, 3)
				for i, entry := range res.ToolTrace {
					So(entry.Step, ShouldEqual, i+1)
					So(entry.Name, ShouldEqual, tools.ToolGetCourses)
				}
			})
		})

		Convey("feeds a failing tool back and keeps going", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(
						toolCall("a", tools.ToolGetCourses, `{}`),
						toolCall("b", "drop_course", `{}`),
						toolCall("c", tools.ToolGetAssignments, `{"course_id":"abc"}`),
					), nil
				}
				return schema.AssistantMessage("done", nil), nil
			}}
			res, err := newRunner(m).Run(ctx, "what's up", &stubLMS{}, nil)
			So(err, ShouldBeNil)
			So(res.Text, ShouldEqual, "done")
			So(m.calls, ShouldEqual, 2)

			results := toolMessages(m)
			So(len(results), ShouldEqual, 3)
			So(results[0].ToolCallID, ShouldEqual, "a")
			So(results[1].ToolCallID, ShouldEqual, "b")
			So(results[2].ToolCallID, ShouldEqual, "c")

			var failure map[string]string
			So(json.Unmarshal([]byte(results[1].Content), &failure), ShouldBeNil)
			So(failure["kind"], ShouldEqual, "unknown_tool")
			So(json.Unmarshal([]byte(results[2].Content), &failure), ShouldBeNil)
			So(failure["kind"], ShouldEqual, "input")

			So(len(res.ToolTrace), ShouldEqual, 3)
			So(res.ToolTrace[0].Error, ShouldBeEmpty)
			So(res.ToolTrace[1].Kind, ShouldEqual, "unknown_tool")
		})

		Convey("answers an assignments question for course 101", func() {
			m := &scriptedModel{script: func(call int, input []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(toolCall("call_1", tools.ToolGetAssignments, `{"course_id":101}`)), nil
				}
				last := input[len(input)-1]
				if last.Role != schema.Tool {
					return nil, errors.New("expected tool result")
				}
				return schema.AssistantMessage("Essay 1 is due March 1.", nil), nil
			}}
			lms := &stubLMS{}
			res, err := newRunner(m).Run(ctx, "What assignments do I have in course 101?", lms, nil)
			So(err, ShouldBeNil)
			So(res.Text, ShouldEqual, "Essay 1 is due March 1.")
			So(res.Message.Role, ShouldEqual, schema.Assistant)
			So(lms.calls, ShouldResemble, []string{"assignments"})
			So(len(res.ToolTrace), ShouldEqual, 1)
			So(string(res.ToolTrace[0].Output), ShouldContainSubstring, "Essay 1")
			So(string(res.ToolTrace[0].Input), ShouldEqual, `{"course_id":101}`)
		})

		Convey("explains when no credential was supplied", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(toolCall("x", tools.ToolGetCourses, ``)), nil
				}
				return schema.AssistantMessage("Please link your Canvas account so I can see your courses.", nil), nil
			}}
			res, err := newRunner(m).Run(ctx, "list my courses", nil, nil)
			So(err, ShouldBeNil)
			So(res.Text, ShouldContainSubstring, "link your Canvas account")
			So(res.ToolTrace[0].Kind, ShouldEqual, "auth")
			So(toolMessages(m)[0].Content, ShouldContainSubstring, `"kind":"auth"`)
		})

		Convey("assigns ids to tool calls the provider left blank", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(toolCall("", tools.ToolGetCourses, `{}`), toolCall("", tools.ToolGetCourses, `{}`)), nil
				}
				return schema.AssistantMessage("ok", nil), nil
			}}
			_, err := newRunner(m).Run(ctx, "courses", &stubLMS{}, nil)
			So(err, ShouldBeNil)

			last := m.inputs[1]
			assistant := last[2]
			So(assistant.Role, ShouldEqual, schema.Assistant)
			results := toolMessages(m)
			for i, call := range assistant.ToolCalls {
				So(call.ID, ShouldStartWith, "call_")
				So(results[i].ToolCallID, ShouldEqual, call.ID)
			}
			So(assistant.ToolCalls[0].ID, ShouldNotEqual, assistant.ToolCalls[1].ID)
		})

		Convey("keeps call order under concurrent dispatch", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(
						toolCall("1", tools.ToolGetQuizzes, `{"course_id":101}`),
						toolCall("2", tools.ToolGetAssignments, `{"course_id":101}`),
						toolCall("3", tools.ToolGetFiles, `{"course_id":101}`),
						toolCall("4", tools.ToolGetCourses, `{}`),
					), nil
				}
				return schema.AssistantMessage("ok", nil), nil
			}}
			lms := &stubLMS{delay: 5 * time.Millisecond}
			res, err := newRunner(m, WithToolConcurrency(4)).Run(ctx, "everything", lms, nil)
			So(err, ShouldBeNil)
			So(len(lms.calls), ShouldEqual, 4)

			results := toolMessages(m)
			So(len(results), ShouldEqual, 4)
			for i, msg := range results {
				So(msg.ToolCallID, ShouldEqual, res.ToolTrace[i].CallID)
			}
			So(res.ToolTrace[0].Name, ShouldEqual, tools.ToolGetQuizzes)
			So(res.ToolTrace[3].Name, ShouldEqual, tools.ToolGetCourses)
		})

		Convey("reports started and completed for each call", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(toolCall("a", tools.ToolGetCourses, `{}`)), nil
				}
				return schema.AssistantMessage("ok", nil), nil
			}}
			var events []string
			reporter := ReporterFuncs{
				Started:   func(e ToolEvent) { events = append(events, "started:"+e.Name) },
				Completed: func(e ToolEvent) { events = append(events, "completed:"+e.Name) },
			}
			_, err := newRunner(m).Run(ctx, "courses", &stubLMS{}, reporter)
			So(err, ShouldBeNil)
			So(events, ShouldResemble, []string{"started:get_courses", "completed:get_courses"})
		})

		Convey("survives a panicking reporter", func() {
			m := &scriptedModel{script: func(call int, _ []*schema.Message) (*schema.Message, error) {
				if call == 1 {
					return callsTools(toolCall("a", tools.ToolGetCourses, `{}`)), nil
				}
				return schema.AssistantMessage("ok", nil), nil
			}}
			reporter := ReporterFuncs{Started: func(ToolEvent) { panic("boom") }}
			res, err := newRunner(m).Run(ctx, "courses", &stubLMS{}, reporter)
			So(err, ShouldBeNil)
			So(res.Text, ShouldEqual, "ok")
		})

		Convey("wraps model failures", func() {
			m := &scriptedModel{script: func(int, []*schema.Message) (*schema.Message, error) {
				return nil, errors.New("throttled")
			}}
			res, err := newRunner(m).Run(ctx, "hi", nil, nil)
			var modelErr *ModelError
			So(errors.As(err, &modelErr), ShouldBeTrue)
			So(modelErr.Step, ShouldEqual, 1)
			So(IsFatal(err), ShouldBeTrue)
			So(res.ToolTrace, ShouldNotBeNil)
			So(res.ToolTrace, ShouldBeEmpty)
		})

		Convey("fails when the model returns nothing", func() {
			m := &scriptedModel{script: func(int, []*schema.Message) (*schema.Message, error) {
				return nil, nil
			}}
			_, err := newRunner(m).Run(ctx, "hi", nil, nil)
			So(errors.Is(err, ErrNoAssistantMessage), ShouldBeTrue)
		})

		Convey("does not call the model once the context is done", func() {
			m := &scriptedModel{script: func(int, []*schema.Message) (*schema.Message, error) {
				return schema.AssistantMessage("late", nil), nil
			}}
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := newRunner(m).Run(cancelled, "hi", nil, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(m.calls, ShouldEqual, 0)
		})
	})
}

func TestTextOf(t *testing.T) {
	Convey("textOf falls back to the first text part", t, func() {
		msg := &schema.Message{
			Role: schema.Assistant,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeImageURL},
				{Type: schema.ChatMessagePartTypeText, Text: "first"},
				{Type: schema.ChatMessagePartTypeText, Text: "second"},
			},
		}
		So(textOf(msg), ShouldEqual, "first")
	})
}
