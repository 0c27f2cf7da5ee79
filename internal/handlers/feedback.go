package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/pkg/clientip"
)

const maxFeedbackLen = 4000

type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type FeedbackEntry struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Feedback  string     `json:"feedback"`
	IPAddress string     `json:"ip_address,omitempty"`
}

// SubmitFeedback stores free-form app feedback. Works with or without a
// session; anonymous submissions keep only the IP.
func SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := strings.TrimSpace(req.Feedback)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Feedback cannot be empty")
		return
	}
	if len(text) > maxFeedbackLen {
		writeError(w, http.StatusBadRequest, "Feedback is too long")
		return
	}

	var userID *uuid.UUID
	if uid, ok := authenticatedUser(r); ok {
		userID = &uid
	}

	_, err := database.PostgresDB.Exec(`
		INSERT INTO feedbacks (user_id, feedback, ip_address)
		VALUES ($1, $2, $3)
	`, userID, text, clientip.FromRequest(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Message: "Thanks for the feedback"})
}

// ListFeedback returns recent feedback entries for the admin panel.
func (h *Admin) ListFeedback(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, user_id, feedback, COALESCE(ip_address, '')
		FROM feedbacks
		ORDER BY created_at DESC
		LIMIT 200
	`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries := []FeedbackEntry{}
	for rows.Next() {
		var e FeedbackEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.UserID, &e.Feedback, &e.IPAddress); err != nil {
			continue
		}
		entries = append(entries, e)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: entries})
}
