package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ChatRequest chat request
type ChatRequest struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`  // Canvas access token; Authorization header wins
	Stream  bool   `json:"stream,omitempty"` // true selects text/event-stream
}

// StudyPackRequest study pack request
type StudyPackRequest struct {
	CourseID CourseID `json:"courseId" swaggertype:"string" example:"187560"`
	Token    string   `json:"token,omitempty"`
}

// CourseID Canvas id accepted as a JSON number or a numeric string
type CourseID int64

// UnmarshalJSON implements json.Unmarshaler
func (c *CourseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("courseId must be an integer: %w", err)
	}
	*c = CourseID(v)
	return nil
}
