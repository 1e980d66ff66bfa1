package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRunStatus outcome of one conversation
type ChatRunStatus string

const (
	ChatRunSucceeded ChatRunStatus = "succeeded"
	ChatRunFailed    ChatRunStatus = "failed"
	ChatRunCancelled ChatRunStatus = "cancelled"
)

// ChatRun audit record of one conversation.
// Never holds the LMS credential or tool outputs.
type ChatRun struct {
	ID            string        `bson:"_id" json:"id"`
	RequestID     string        `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Authenticated bool          `bson:"authenticated" json:"authenticated"`
	Stream        bool          `bson:"stream" json:"stream"`
	Status        ChatRunStatus `bson:"status" json:"status"`
	Steps         int           `bson:"steps" json:"steps"`
	ToolCalls     []ChatRunTool `bson:"tool_calls" json:"tool_calls"`
	Error         string        `bson:"error,omitempty" json:"error,omitempty"`
	DurationMs    int64         `bson:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}

// ChatRunTool one tool call of a run
type ChatRunTool struct {
	Step  int    `bson:"step" json:"step"`
	Name  string `bson:"name" json:"name"`
	Kind  string `bson:"kind,omitempty" json:"kind,omitempty"`
	Error string `bson:"error,omitempty" json:"error,omitempty"`
}

// Collection implements mongodb.Model
func (ChatRun) Collection() string {
	return "chat_runs"
}

// EnsureIndexes implements mongodb.Model
func (r ChatRun) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{bson.E{Key: "status", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "tool_calls.name", Value: 1}},
			Options: options.Index().SetName("idx_tool_name"),
		},
	}
	_, err := db.Collection(r.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}
