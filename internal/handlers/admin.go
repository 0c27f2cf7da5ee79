package handlers

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/internal/services"
)

// Admin holds the moderation endpoints. All of them require the static
// admin token in the X-Admin-Token header; they are not exposed to the app.
type Admin struct {
	Token string
}

func (h *Admin) authorize(w http.ResponseWriter, r *http.Request) bool {
	if h.Token == "" {
		writeError(w, http.StatusServiceUnavailable, "Admin access is not configured")
		return false
	}
	provided := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.Token)) != 1 {
		writeError(w, http.StatusUnauthorized, "Invalid admin token")
		return false
	}
	return true
}

// ListViolations returns the most recent moderation hits, optionally
// filtered by IP.
func (h *Admin) ListViolations(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	query := `
		SELECT id, created_at, user_id, ip_address, type, content, action_taken
		FROM violations
	`
	args := []interface{}{}
	if ip := strings.TrimSpace(r.URL.Query().Get("ip")); ip != "" {
		query += " WHERE ip_address = $1"
		args = append(args, ip)
	}
	query += " ORDER BY created_at DESC LIMIT 200"

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	violations := []models.Violation{}
	for rows.Next() {
		var v models.Violation
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.UserID, &v.IPAddress, &v.Type, &v.Content, &v.ActionTaken); err != nil {
			continue
		}
		violations = append(violations, v)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: violations})
}

// ListBlockedIPs returns all currently active IP blocks.
func (h *Admin) ListBlockedIPs(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, expires_at, ip_address, reason, is_active
		FROM blocked_ips
		WHERE is_active = TRUE AND expires_at > NOW()
		ORDER BY created_at DESC
	`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	blocks := []models.BlockedIP{}
	for rows.Next() {
		var b models.BlockedIP
		if err := rows.Scan(&b.ID, &b.CreatedAt, &b.ExpiresAt, &b.IPAddress, &b.Reason, &b.IsActive); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: blocks})
}

type BlockIPRequest struct {
	IPAddress    string `json:"ip_address"`
	Reason       string `json:"reason"`
	DurationDays int    `json:"duration_days"`
}

// BlockIP places a manual block on an IP.
func (h *Admin) BlockIP(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req BlockIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IPAddress == "" {
		writeError(w, http.StatusBadRequest, "ip_address is required")
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = 1
	}
	if req.Reason == "" {
		req.Reason = "manual block"
	}

	if err := services.BlockIP(req.IPAddress, req.Reason, req.DurationDays); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to block IP")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "IP blocked"})
}

type UnblockIPRequest struct {
	IPAddress string `json:"ip_address"`
}

// UnblockIP lifts all active blocks for an IP.
func (h *Admin) UnblockIP(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req UnblockIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IPAddress == "" {
		writeError(w, http.StatusBadRequest, "ip_address is required")
		return
	}

	if err := services.UnblockIP(req.IPAddress); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to unblock IP")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "IP unblocked"})
}

// ListUsers returns recently created accounts for moderation review.
func (h *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, username, avatar_url, created_at, is_active
		FROM users
		ORDER BY created_at DESC
		LIMIT 200
	`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var avatarURL sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &avatarURL, &u.CreatedAt, &u.IsActive); err != nil {
			continue
		}
		u.AvatarURL = avatarURL.String
		users = append(users, u)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: users})
}

type DeactivateUserRequest struct {
	UserID string `json:"user_id"`
}

// DeactivateUser hides an account: it can no longer sign in and drops off
// the leaderboard. Sessions are revoked immediately.
func (h *Admin) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	var req DeactivateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user_id")
		return
	}

	res, err := database.PostgresDB.Exec(`
		UPDATE users SET is_active = FALSE WHERE id = $1
	`, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	_ = services.InvalidateUserSessions(userID)

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "User deactivated"})
}
