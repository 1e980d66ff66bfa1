package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talberry/sdsu-study-bot/internal/model"
)

// ErrChatRunNotFound no run with the given id
var ErrChatRunNotFound = errors.New("chat run not found")

const (
	defaultRunLimit int64 = 20
	maxRunLimit     int64 = 100
)

// ChatRunRepository persistence of conversation audit records
type ChatRunRepository interface {
	Create(ctx context.Context, run *model.ChatRun) error
	FindByID(ctx context.Context, id string) (*model.ChatRun, error)
	ListRecent(ctx context.Context, limit int64) ([]*model.ChatRun, error)
}

// ChatRunRepo MongoDB backed ChatRunRepository
type ChatRunRepo struct {
	collection *mongo.Collection
}

// NewChatRunRepo creates the repository
func NewChatRunRepo(db *mongo.Database) *ChatRunRepo {
	return &ChatRunRepo{
		collection: db.Collection(model.ChatRun{}.Collection()),
	}
}

// Create inserts a run; CreatedAt defaults to now
func (r *ChatRunRepo) Create(ctx context.Context, run *model.ChatRun) error {
	if run.ID == "" {
		return fmt.Errorf("chat run id is empty")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ToolCalls == nil {
		run.ToolCalls = []model.ChatRunTool{}
	}

	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("insert chat run: %w", err)
	}
	return nil
}

// FindByID loads one run
func (r *ChatRunRepo) FindByID(ctx context.Context, id string) (*model.ChatRun, error) {
	var run model.ChatRun
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrChatRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat run: %w", err)
	}
	return &run, nil
}

// ListRecent newest runs first, at most maxRunLimit
func (r *ChatRunRepo) ListRecent(ctx context.Context, limit int64) ([]*model.ChatRun, error) {
	switch {
	case limit <= 0:
		limit = defaultRunLimit
	case limit > maxRunLimit:
		limit = maxRunLimit
	}
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chat runs: %w", err)
	}
	defer cursor.Close(ctx)

	runs := []*model.ChatRun{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("decode chat runs: %w", err)
	}
	return runs, nil
}
