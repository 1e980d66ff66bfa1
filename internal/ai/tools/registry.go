package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/go-viper/mapstructure/v2"

	model "github.com/talberry/sdsu-study-bot/internal/model/canvas"
)

// LMS read surface the tools depend on. *canvas.Client implements it.
type LMS interface {
	GetCourses(ctx context.Context) ([]model.Course, error)
	GetModules(ctx context.Context, courseID int64) ([]model.Module, error)
	GetModuleItems(ctx context.Context, courseID, moduleID int64) ([]model.ModuleItem, error)
	GetPages(ctx context.Context, courseID int64) ([]model.Page, error)
	GetPage(ctx context.Context, courseID int64, pageURL string) (*model.Page, error)
	GetAssignments(ctx context.Context, courseID int64) ([]model.Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*model.Assignment, error)
	GetQuizzes(ctx context.Context, courseID int64) ([]model.Quiz, error)
	GetQuiz(ctx context.Context, courseID, quizID int64) (*model.Quiz, error)
	GetFiles(ctx context.Context, courseID int64) ([]model.File, error)
}

// Tool a callable operation advertised to the model.
// Schema and behaviour live on the same value so they cannot drift.
type Tool interface {
	// Name unique identifier
	Name() string

	// Info schema handed to the model
	Info() *schema.ToolInfo

	// RequiresCredential reports whether Execute touches the LMS
	RequiresCredential() bool

	// Validate checks decoded JSON arguments against the input contract
	Validate(args map[string]any) error

	// Execute runs the tool; lms is nil when no credential was supplied
	Execute(ctx context.Context, args map[string]any, lms LMS) (any, error)
}

// HandlerFunc typed tool body
type HandlerFunc[Req any] func(ctx context.Context, lms LMS, req Req) (any, error)

// FuncTool Tool built from a typed handler.
// Arguments are validated against params, then decoded into Req with mapstructure.
type FuncTool[Req any] struct {
	name         string
	desc         string
	params       []Param
	credentialed bool
	handler      HandlerFunc[Req]
}

// NewFuncTool creates a typed tool
func NewFuncTool[Req any](name, desc string, credentialed bool, params []Param, handler HandlerFunc[Req]) *FuncTool[Req] {
	return &FuncTool[Req]{
		name:         name,
		desc:         desc,
		params:       params,
		credentialed: credentialed,
		handler:      handler,
	}
}

// Name implements Tool
func (t *FuncTool[Req]) Name() string {
	return t.name
}

// Info implements Tool
func (t *FuncTool[Req]) Info() *schema.ToolInfo {
	props := make(map[string]*schema.ParameterInfo, len(t.params))
	for _, p := range t.params {
		props[p.Name] = &schema.ParameterInfo{
			Type:     p.Type,
			Desc:     p.Desc,
			Enum:     p.Enum,
			Required: p.Required,
		}
	}
	return &schema.ToolInfo{
		Name:        t.name,
		Desc:        t.desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(props),
	}
}

// RequiresCredential implements Tool
func (t *FuncTool[Req]) RequiresCredential() bool {
	return t.credentialed
}

// Validate implements Tool
func (t *FuncTool[Req]) Validate(args map[string]any) error {
	return validateArgs(t.name, t.params, args)
}

// Execute implements Tool
func (t *FuncTool[Req]) Execute(ctx context.Context, args map[string]any, lms LMS) (any, error) {
	var req Req
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &req,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: build decoder: %w", t.name, err)
	}
	if err := decoder.Decode(args); err != nil {
		return nil, &InputError{Tool: t.name, Reason: err.Error()}
	}
	return t.handler(ctx, lms, req)
}

// Registry ordered set of tools keyed by name
type Registry struct {
	tools []Tool
	index map[string]Tool
}

// NewRegistry builds a registry; duplicate or empty names are rejected
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if _, exists := r.index[t.Name()]; exists {
			return nil, fmt.Errorf("tool %s already registered", t.Name())
		}
		r.tools = append(r.tools, t)
		r.index[t.Name()] = t
	}
	return r, nil
}

// Get looks up a tool
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Names returns tool names in declaration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name()
	}
	return names
}

// Infos returns the schemas advertised to the model, in declaration order
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, len(r.tools))
	for i, t := range r.tools {
		infos[i] = t.Info()
	}
	return infos
}

// Execute dispatches one model-issued call and returns its JSON result.
// lms must be a nil interface when the request carried no credential.
func (r *Registry) Execute(ctx context.Context, name, arguments string, lms LMS) (json.RawMessage, error) {
	tool, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if tool.RequiresCredential() && lms == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrAuthRequired)
	}

	args, err := ParseArguments(arguments)
	if err != nil {
		return nil, &InputError{Tool: name, Reason: err.Error()}
	}

	if err := tool.Validate(args); err != nil {
		return nil, err
	}

	result, err := tool.Execute(ctx, args, lms)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal result: %w", name, err)
	}
	return out, nil
}

// ParseArguments decodes a tool call's JSON arguments; blank means no arguments
func ParseArguments(arguments string) (map[string]any, error) {
	trimmed := bytes.TrimSpace([]byte(arguments))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}

	var args map[string]any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
