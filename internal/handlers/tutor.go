package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/internal/services"
	"github.com/kalimapp/kalima-backend/pkg/clientip"
)

// maxTutorMessageLen caps a single chat turn. Longer input wastes model
// context and is almost always paste spam.
const maxTutorMessageLen = 2000

type TutorMessageRequest struct {
	Text string `json:"text"`
}

type TutorMessageResponse struct {
	UserMessage models.TutorMessage `json:"user_message"`
	Reply       models.TutorMessage `json:"reply"`
	Censored    bool                `json:"censored"`
}

type TutorHistoryResponse struct {
	Messages []models.TutorMessage `json:"messages"`
	HasMore  bool                  `json:"has_more"`
}

// Tutor holds the handlers that need the AI tutor service.
type Tutor struct {
	Service *services.TutorService
}

// SendMessage runs one chat turn: moderate the input, fetch recent context,
// ask the model, and persist both sides of the exchange.
func (h *Tutor) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req TutorMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if len(text) > maxTutorMessageLen {
		writeError(w, http.StatusBadRequest, "Message is too long")
		return
	}

	flagged := services.ChatTextFlagged(text)
	censored := services.CensorChatText(text)
	if flagged {
		uid := userID
		_ = services.RecordViolation(&uid, clientip.FromRequest(r), models.ViolationChat, text, "censored")
	}

	ctx := r.Context()
	uidStr := userID.String()
	now := time.Now()

	// Context is fetched before the new turn is stored so the prompt does
	// not contain the message twice.
	history := services.GetTutorContext(ctx, uidStr)

	userMsg := models.TutorMessage{
		UserID:    uidStr,
		Role:      models.TutorRoleUser,
		Text:      censored,
		Timestamp: now,
	}
	if err := services.SaveTutorMessage(ctx, userMsg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save message")
		return
	}

	replyText := h.Service.ReplyWithFallback(ctx, history, censored)

	replyMsg := models.TutorMessage{
		UserID:    uidStr,
		Role:      models.TutorRoleAssistant,
		Text:      replyText,
		Timestamp: time.Now(),
	}
	if err := services.SaveTutorMessage(ctx, replyMsg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save reply")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: TutorMessageResponse{
			UserMessage: userMsg,
			Reply:       replyMsg,
			Censored:    censored != text,
		},
	})
}

// GetHistory pages through the caller's chat history, oldest first within
// each page. Pass before=<RFC3339> to fetch earlier pages.
func (h *Tutor) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid before timestamp")
			return
		}
		before = &t
	}

	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	messages, hasMore, err := services.LoadTutorHistory(r.Context(), userID.String(), before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    TutorHistoryResponse{Messages: messages, HasMore: hasMore},
	})
}

// ClearHistory deletes the caller's entire tutor conversation.
func (h *Tutor) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := services.DeleteTutorHistory(r.Context(), userID.String()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "History cleared"})
}
