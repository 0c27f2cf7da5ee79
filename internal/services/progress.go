package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/progress"
)

// GameplayConfig is the tuning applied to every progress mutation.
var GameplayConfig = progress.DefaultConfig()

// LoadProgress reads a user's progress record, creating the default one on
// first access. The raw JSON is decoded through progress.State so fields
// this build doesn't know about survive the next write.
func LoadProgress(userID uuid.UUID, now time.Time) (progress.State, error) {
	var blob []byte
	err := database.PostgresDB.QueryRow(`
		SELECT state FROM user_progress WHERE user_id = $1
	`, userID).Scan(&blob)

	if err == sql.ErrNoRows {
		state := progress.NewState(GameplayConfig, now)
		if err := SaveProgress(userID, state); err != nil {
			return progress.State{}, err
		}
		return state, nil
	}
	if err != nil {
		return progress.State{}, fmt.Errorf("load progress: %w", err)
	}

	var state progress.State
	if err := json.Unmarshal(blob, &state); err != nil {
		return progress.State{}, fmt.Errorf("decode progress: %w", err)
	}
	return state, nil
}

// SaveProgress upserts the progress record.
func SaveProgress(userID uuid.UUID, state progress.State) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	_, err = database.PostgresDB.Exec(`
		INSERT INTO user_progress (user_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET state = $2, updated_at = NOW()
	`, userID, blob)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// SyncProgress is the pull-based catch-up run on app start and foreground:
// daily rollover first, then life regeneration, persisted once.
func SyncProgress(userID uuid.UUID, now time.Time) (progress.State, error) {
	state, err := LoadProgress(userID, now)
	if err != nil {
		return progress.State{}, err
	}

	state = progress.CheckDailyReset(state, now)
	state = progress.CheckLifeRegeneration(state, now, GameplayConfig)

	if err := SaveProgress(userID, state); err != nil {
		return progress.State{}, err
	}
	return state, nil
}

// RecordLessonCompletion applies a finished lesson and feeds the earned XP
// into the weekly leaderboard.
func RecordLessonCompletion(userID uuid.UUID, now time.Time, xp int) (progress.State, error) {
	state, err := LoadProgress(userID, now)
	if err != nil {
		return progress.State{}, err
	}

	state = progress.CheckLifeRegeneration(state, now, GameplayConfig)
	state = progress.CompleteLesson(state, now, xp)

	if err := SaveProgress(userID, state); err != nil {
		return progress.State{}, err
	}

	if err := AddLeaderboardXP(userID, xp, now); err != nil {
		// Leaderboard is best-effort; the progress write already succeeded.
		log.Printf("leaderboard update failed for %s: %v", userID, err)
	}

	return state, nil
}

// ErrNoLives is returned when a life loss is requested at zero lives.
var ErrNoLives = fmt.Errorf("no lives remaining")

// RecordLifeLoss spends one life after a failed exercise. Premium users
// have unlimited lives and skip the deduction entirely.
func RecordLifeLoss(userID uuid.UUID, now time.Time) (progress.State, error) {
	state, err := LoadProgress(userID, now)
	if err != nil {
		return progress.State{}, err
	}

	state = progress.CheckLifeRegeneration(state, now, GameplayConfig)

	premium, err := HasActiveSubscription(userID)
	if err == nil && premium {
		return state, SaveProgress(userID, state)
	}

	if state.CurrentLives <= 0 {
		return state, ErrNoLives
	}

	state = progress.RemoveLives(state, 1, now)

	if err := SaveProgress(userID, state); err != nil {
		return progress.State{}, err
	}
	return state, nil
}

// ErrAdQuotaExceeded is returned when the rolling ad-reward limit is hit.
var ErrAdQuotaExceeded = fmt.Errorf("ad reward quota exceeded")

// RecordAdReward grants the rewarded-ad life, enforcing the rolling quota.
func RecordAdReward(userID uuid.UUID, now time.Time) (progress.State, error) {
	state, err := LoadProgress(userID, now)
	if err != nil {
		return progress.State{}, err
	}

	state = progress.CheckLifeRegeneration(state, now, GameplayConfig)

	if !progress.CanWatchAd(state, now, GameplayConfig) {
		return state, ErrAdQuotaExceeded
	}

	state = progress.RecordAdWatch(state, now, GameplayConfig)

	if err := SaveProgress(userID, state); err != nil {
		return progress.State{}, err
	}
	return state, nil
}

// ResetProgress wipes the record back to defaults (explicit "reset user
// data" action, e.g. from settings).
func ResetProgress(userID uuid.UUID, now time.Time) (progress.State, error) {
	state := progress.NewState(GameplayConfig, now)
	if err := SaveProgress(userID, state); err != nil {
		return progress.State{}, err
	}
	return state, nil
}
