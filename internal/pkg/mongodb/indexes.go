package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talberry/sdsu-study-bot/internal/model"
)

// EnsureIndexes creates indexes for every persisted model at startup
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return EnsureAllIndexes(ctx, db, &model.ChatRun{})
}
