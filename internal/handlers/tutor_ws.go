package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/internal/services"
	"github.com/kalimapp/kalima-backend/pkg/clientip"
)

var tutorUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// TutorClientMessage is a frame from the app over the tutor WebSocket.
type TutorClientMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text,omitempty"`
}

// TutorServerMessage is a frame sent back to the app.
type TutorServerMessage struct {
	Type      string `json:"type"` // "reply", "echo", "error", "pong"
	Role      string `json:"role,omitempty"`
	Text      string `json:"text,omitempty"`
	Censored  bool   `json:"censored,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Chat handles the tutor conversation over WebSocket. Authentication uses
// the session token, via the Authorization header or a `token` query
// parameter for browser clients.
func (h *Tutor) Chat(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := tutorUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	clientIP := clientip.FromRequest(r)

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg TutorClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			h.handleTutorTurn(r, conn, userID, clientIP, msg.Text)
		case "ping":
			_ = conn.WriteJSON(TutorServerMessage{Type: "pong"})
		}
	}
}

func (h *Tutor) handleTutorTurn(r *http.Request, conn *websocket.Conn, userID uuid.UUID, clientIP, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		_ = conn.WriteJSON(TutorServerMessage{Type: "error", Text: "Message cannot be empty"})
		return
	}
	if len(text) > maxTutorMessageLen {
		_ = conn.WriteJSON(TutorServerMessage{Type: "error", Text: "Message is too long"})
		return
	}

	flagged := services.ChatTextFlagged(text)
	censored := services.CensorChatText(text)
	if flagged {
		uid := userID
		_ = services.RecordViolation(&uid, clientIP, models.ViolationChat, text, "censored")
	}

	uidStr := userID.String()
	ctx := r.Context()
	now := time.Now()

	history := services.GetTutorContext(ctx, uidStr)

	userMsg := models.TutorMessage{
		UserID:    uidStr,
		Role:      models.TutorRoleUser,
		Text:      censored,
		Timestamp: now,
	}
	if err := services.SaveTutorMessage(ctx, userMsg); err != nil {
		_ = conn.WriteJSON(TutorServerMessage{Type: "error", Text: "Failed to save message"})
		return
	}

	// Echo the stored (possibly censored) text back so the UI reflects
	// what the tutor will actually see.
	_ = conn.WriteJSON(TutorServerMessage{
		Type:      "echo",
		Role:      models.TutorRoleUser,
		Text:      censored,
		Censored:  censored != text,
		Timestamp: now.UTC().Format(time.RFC3339),
	})

	replyText := h.Service.ReplyWithFallback(ctx, history, censored)

	replyMsg := models.TutorMessage{
		UserID:    uidStr,
		Role:      models.TutorRoleAssistant,
		Text:      replyText,
		Timestamp: time.Now(),
	}
	if err := services.SaveTutorMessage(ctx, replyMsg); err != nil {
		_ = conn.WriteJSON(TutorServerMessage{Type: "error", Text: "Failed to save reply"})
		return
	}

	_ = conn.WriteJSON(TutorServerMessage{
		Type:      "reply",
		Role:      models.TutorRoleAssistant,
		Text:      replyText,
		Timestamp: replyMsg.Timestamp.UTC().Format(time.RFC3339),
	})
}
