package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// leaderboardKeyPrefix + ISO week forms the sorted-set key, e.g.
	// "leaderboard:weekly:2026-W11".
	leaderboardKeyPrefix = "leaderboard:weekly:"
	// leaderboardTTL keeps two weeks of boards around so the previous
	// week's results stay queryable briefly after rollover.
	leaderboardTTL = 15 * 24 * time.Hour
)

// WeeklyLeaderboardKey returns the Redis key for the ISO week containing t.
func WeeklyLeaderboardKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", leaderboardKeyPrefix, year, week)
}

// AddLeaderboardXP credits xp to the user's weekly score.
func AddLeaderboardXP(userID uuid.UUID, xp int, now time.Time) error {
	if xp <= 0 {
		return nil
	}

	ctx := context.Background()
	key := WeeklyLeaderboardKey(now)

	pipe := database.RedisClient.Pipeline()
	pipe.ZIncrBy(ctx, key, float64(xp), userID.String())
	pipe.Expire(ctx, key, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// GetWeeklyLeaderboard returns the top-N entries for the current week with
// usernames resolved from PostgreSQL. Deactivated accounts are skipped.
func GetWeeklyLeaderboard(ctx context.Context, now time.Time, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	key := WeeklyLeaderboardKey(now)
	scores, err := database.RedisClient.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(scores))
	rank := 0
	for _, z := range scores {
		userID, ok := z.Member.(string)
		if !ok {
			continue
		}

		var username string
		var avatarURL sql.NullString
		err := database.PostgresDB.QueryRow(`
			SELECT username, avatar_url FROM users WHERE id = $1 AND is_active = TRUE
		`, userID).Scan(&username, &avatarURL)
		if err != nil {
			continue
		}

		rank++
		entries = append(entries, models.LeaderboardEntry{
			Rank:      rank,
			UserID:    userID,
			Username:  username,
			AvatarURL: avatarURL.String,
			XP:        int(z.Score),
		})
	}

	return entries, nil
}

// GetLeaderboardRank returns the caller's 1-based rank and weekly XP, or
// (0, 0) when they haven't scored this week.
func GetLeaderboardRank(ctx context.Context, userID uuid.UUID, now time.Time) (int, int, error) {
	key := WeeklyLeaderboardKey(now)

	rank, err := database.RedisClient.ZRevRank(ctx, key, userID.String()).Result()
	if err == redis.Nil {
		// Not on the board yet.
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	score, err := database.RedisClient.ZScore(ctx, key, userID.String()).Result()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	return int(rank) + 1, int(score), nil
}
