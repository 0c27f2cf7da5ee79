package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/internal/services"
	"github.com/kalimapp/kalima-backend/pkg/clientip"
	"github.com/kalimapp/kalima-backend/pkg/textsafety"
	"github.com/kalimapp/kalima-backend/pkg/utils"
)

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CheckUsernameRequest struct {
	Username string `json:"username"`
}

// AuthResponse returns the public profile plus the session token.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// CheckUsername reports whether a username passes the safety policy and is
// unclaimed. Used by the signup screen for inline feedback.
func CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req CheckUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if res := services.ValidateUsername(req.Username); !res.Valid {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"available": false,
			"message":   res.Error,
		})
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(req.Username))

	var existing string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalized,
	).Scan(&existing)

	available := err == sql.ErrNoRows

	message := "Username is available"
	if !available {
		message = "Username is already taken"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"available": available,
		"message":   message,
	})
}

// Signup registers a username-only account. The username runs through the
// full safety validation; profane or restricted attempts are recorded as
// violations.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if res := services.ValidateUsername(req.Username); !res.Valid {
		if res.Error == textsafety.ErrRestrictedContent || res.Error == textsafety.ErrInappropriate {
			_ = services.RecordViolation(nil, clientip.FromRequest(r), models.ViolationUsername, req.Username, "rejected")
		}
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: res.Error})
		return
	}

	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Password must be at least 8 characters"})
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(req.Username))

	var existing string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalized,
	).Scan(&existing)
	if err == nil {
		writeJSON(w, http.StatusConflict, AuthResponse{Success: false, Message: "Username is already taken"})
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	now := time.Now()

	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, username, password_hash, created_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`, userID, normalized, hashedPassword, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	// Seed the gameplay record so the first sync doesn't race signup.
	if _, err := services.SyncProgress(userID, now); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to initialize progress")
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User: &models.User{
			ID:        userID,
			Username:  normalized,
			CreatedAt: now,
			IsActive:  true,
		},
		Token: token,
	})
}

// Signin validates credentials and issues a fresh session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(req.Username))

	var userID uuid.UUID
	var passwordHash string
	var avatarURL sql.NullString
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, avatar_url, created_at, is_active
		FROM users
		WHERE LOWER(username) = $1
	`, normalized).Scan(&userID, &passwordHash, &avatarURL, &createdAt, &isActive)

	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid username or password")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !isActive {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User: &models.User{
			ID:        userID,
			Username:  normalized,
			AvatarURL: avatarURL.String,
			CreatedAt: createdAt,
			IsActive:  isActive,
		},
		Token: token,
	})
}

// GetMe returns the caller's profile.
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := services.GetUserByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: user})
}

// Logout invalidates the caller's session.
func Logout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing session token")
		return
	}

	if err := services.InvalidateSession(token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Logged out"})
}
