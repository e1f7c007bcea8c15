package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/pkg/logger"
)

// MongoChatLogRepository persists chat exchanges to the chatLogs
// collection.
type MongoChatLogRepository struct {
	collection *mongo.Collection
}

var _ repository.ChatLogRepository = (*MongoChatLogRepository)(nil)

// NewMongoChatLogRepository creates the repository and its indexes.
func NewMongoChatLogRepository(db *mongo.Database) *MongoChatLogRepository {
	collection := db.Collection("chatLogs")

	ctx := context.Background()
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.M{"timestamp": -1}},
	})

	return &MongoChatLogRepository{collection: collection}
}

// Save inserts one chat log entry.
func (r *MongoChatLogRepository) Save(ctx context.Context, log *entity.ChatLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

// Recent returns the latest entries for a property, most recent first.
func (r *MongoChatLogRepository) Recent(ctx context.Context, propertyID string, limit int) ([]*entity.ChatLog, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"propertyId": propertyID}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*entity.ChatLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// LoggerChatLogRepository is the fallback sink used when MongoDB is
// not configured: entries go to the structured log and nowhere else.
type LoggerChatLogRepository struct {
	logger logger.Logger
}

var _ repository.ChatLogRepository = (*LoggerChatLogRepository)(nil)

// NewLoggerChatLogRepository creates the fallback sink.
func NewLoggerChatLogRepository(log logger.Logger) *LoggerChatLogRepository {
	return &LoggerChatLogRepository{logger: log}
}

// Save writes the exchange to the structured log.
func (r *LoggerChatLogRepository) Save(ctx context.Context, log *entity.ChatLog) error {
	r.logger.Info("Chat exchange",
		"propertyId", log.PropertyID,
		"locale", log.Locale,
		"guestMsg", log.GuestMsg,
		"botMsg", log.BotMsg,
		"usedAi", log.UsedAI,
	)
	return nil
}
