package services

import (
	"context"
	"time"

	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tutorCollection = "tutor_messages"

// EnsureTutorIndexes configures indexes for the tutor_messages collection.
// Called on startup from main after Mongo has connected.
func EnsureTutorIndexes(ctx context.Context) error {
	col := database.DB.Collection(tutorCollection)

	// Compound index on (user_id, timestamp) for paginated history reads.
	idx := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("idx_user_timestamp"),
	}

	_, err := col.Indexes().CreateOne(ctx, idx)
	return err
}

// SaveTutorMessage persists one conversation turn and appends it to the
// Redis context cache used for prompting.
func SaveTutorMessage(ctx context.Context, msg models.TutorMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	col := database.DB.Collection(tutorCollection)
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return err
	}

	pushTutorContext(msg)
	return nil
}

// LoadTutorHistory returns paginated tutor history for a user. Pagination
// is timestamp-based (newest-first scrolling); results come back
// oldest-first for the UI.
func LoadTutorHistory(ctx context.Context, userID string, before *time.Time, limit int64) ([]models.TutorMessage, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(tutorCollection)

	filter := bson.M{"user_id": userID}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var msgs []models.TutorMessage
	for cur.Next(ctx) {
		var m models.TutorMessage
		if err := cur.Decode(&m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(msgs)) > limit
	if hasMore {
		msgs = msgs[:len(msgs)-1]
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, hasMore, nil
}

// DeleteTutorHistory removes a user's entire conversation (account
// deletion / "clear chat" action).
func DeleteTutorHistory(ctx context.Context, userID string) error {
	col := database.DB.Collection(tutorCollection)
	if _, err := col.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return err
	}
	clearTutorContext(ctx, userID)
	return nil
}
