package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
)

// Redis keeps the tail of each user's tutor conversation so prompt context
// doesn't need a Mongo round trip on every message.
const (
	tutorContextKeyPrefix = "tutor:context:"
	tutorContextMaxLen    = 20
	tutorContextTTL       = 1 * time.Hour
)

func tutorContextKey(userID string) string {
	return tutorContextKeyPrefix + userID
}

// pushTutorContext appends a turn to the cached conversation tail
// (LPUSH + LTRIM, newest at head). Best effort.
func pushTutorContext(msg models.TutorMessage) {
	if database.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	key := tutorContextKey(msg.UserID)
	pipe := database.RedisClient.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, tutorContextMaxLen-1)
	pipe.Expire(ctx, key, tutorContextTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("tutor context: push failed for %s: %v", msg.UserID, err)
	}
}

// GetTutorContext returns the cached conversation tail oldest-first,
// falling back to Mongo (and warming the cache) on a miss.
func GetTutorContext(ctx context.Context, userID string) []models.TutorMessage {
	if database.RedisClient != nil {
		raw, err := database.RedisClient.LRange(ctx, tutorContextKey(userID), 0, -1).Result()
		if err == nil && len(raw) > 0 {
			msgs := make([]models.TutorMessage, 0, len(raw))
			for i := len(raw) - 1; i >= 0; i-- {
				var m models.TutorMessage
				if json.Unmarshal([]byte(raw[i]), &m) != nil {
					continue
				}
				msgs = append(msgs, m)
			}
			return msgs
		}
	}

	msgs, _, err := LoadTutorHistory(ctx, userID, nil, tutorContextMaxLen)
	if err != nil {
		return nil
	}
	warmTutorContext(ctx, userID, msgs)
	return msgs
}

// warmTutorContext seeds the cache from a Mongo read (oldest at tail).
func warmTutorContext(ctx context.Context, userID string, msgs []models.TutorMessage) {
	if database.RedisClient == nil || len(msgs) == 0 {
		return
	}

	key := tutorContextKey(userID)
	pipe := database.RedisClient.Pipeline()
	for i := len(msgs) - 1; i >= 0; i-- {
		data, err := json.Marshal(msgs[i])
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, 0, tutorContextMaxLen-1)
	pipe.Expire(ctx, key, tutorContextTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("tutor context: warm failed for %s: %v", userID, err)
	}
}

func clearTutorContext(ctx context.Context, userID string) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, tutorContextKey(userID))
}
