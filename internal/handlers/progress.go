package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kalimapp/kalima-backend/internal/services"
)

type LessonCompleteRequest struct {
	XPEarned int `json:"xp_earned"`
}

// SyncProgress applies daily reset and life regeneration, persists, and
// returns the authoritative state. Clients call this on app foreground.
func SyncProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := services.SyncProgress(userID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sync progress")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: state})
}

// CompleteLesson records a finished lesson, awards XP, and feeds the weekly
// leaderboard.
func CompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req LessonCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := services.RecordLessonCompletion(userID, time.Now(), req.XPEarned)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record lesson")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Lesson recorded", Data: state})
}

// LoseLife deducts one life after a failed exercise. Premium accounts keep
// their lives untouched.
func LoseLife(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := services.RecordLifeLoss(userID, time.Now())
	if err != nil {
		if err == services.ErrNoLives {
			writeJSON(w, http.StatusConflict, APIResponse{Success: false, Message: "No lives remaining"})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update lives")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: state})
}

// ClaimAdReward grants a life for a completed rewarded ad, subject to the
// rolling watch quota.
func ClaimAdReward(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := services.RecordAdReward(userID, time.Now())
	if err != nil {
		if err == services.ErrAdQuotaExceeded {
			writeJSON(w, http.StatusTooManyRequests, APIResponse{Success: false, Message: "Ad reward limit reached"})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to grant reward")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Life granted", Data: state})
}

// ResetProgress wipes the caller's gameplay state back to defaults.
func ResetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := services.ResetProgress(userID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset progress")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Progress reset", Data: state})
}
