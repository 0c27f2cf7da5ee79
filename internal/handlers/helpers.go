package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/services"
)

// APIResponse is the common JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{Success: false, Message: message})
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
func extractBearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// authenticatedUser resolves the session token on the request to a user ID.
// WebSocket browser clients may pass the token as a query parameter since
// they cannot set headers.
func authenticatedUser(r *http.Request) (uuid.UUID, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return uuid.Nil, false
	}

	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUser writes a 401 and returns false when the request carries no
// valid session.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := authenticatedUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
