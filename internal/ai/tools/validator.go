package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Param one field of a tool input contract
type Param struct {
	Name     string
	Type     schema.DataType
	Desc     string
	Required bool
	Enum     []string
}

// validateArgs checks required fields, primitive types and enums
func validateArgs(tool string, params []Param, args map[string]any) error {
	for _, p := range params {
		value, exists := args[p.Name]
		if !exists || value == nil {
			if p.Required {
				return &InputError{Tool: tool, Field: p.Name, Reason: "missing required field"}
			}
			continue
		}

		if err := checkType(value, p.Type); err != nil {
			return &InputError{Tool: tool, Field: p.Name, Reason: err.Error()}
		}

		if p.Type == schema.String {
			s := value.(string)
			if p.Required && strings.TrimSpace(s) == "" {
				return &InputError{Tool: tool, Field: p.Name, Reason: "must not be empty"}
			}
			if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
				return &InputError{Tool: tool, Field: p.Name, Reason: fmt.Sprintf("must be one of %s", strings.Join(p.Enum, ", "))}
			}
		}
	}
	return nil
}

func checkType(value any, expected schema.DataType) error {
	switch expected {
	case schema.String:
		if _, ok := value.(string); ok {
			return nil
		}
	case schema.Integer:
		if isInteger(value) {
			return nil
		}
	case schema.Number:
		if isNumber(value) {
			return nil
		}
	case schema.Boolean:
		if _, ok := value.(bool); ok {
			return nil
		}
	case schema.Object:
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case schema.Array:
		if _, ok := value.([]any); ok {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %T", expected, value)
}

func isNumber(value any) bool {
	switch v := value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		_, err := v.Float64()
		return err == nil
	}
	return false
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return math.Trunc(float64(v)) == float64(v)
	case float64:
		return math.Trunc(v) == v && !math.IsInf(v, 0)
	case json.Number:
		_, err := v.Int64()
		return err == nil
	}
	return false
}
