package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kalimapp/kalima-backend/internal/models"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"

	tutorSystemPrompt = "You are a friendly Arabic literacy tutor inside a Quran " +
		"learning app. Answer questions about Arabic letters, harakat, tajweed " +
		"and reading practice. Keep answers short, encouraging, and suitable " +
		"for beginners. Answer in the language the student writes in " +
		"(Turkish or English)."

	// tutorContextTurns is how many prior turns are sent with each request.
	tutorContextTurns = 10
)

// tutorFallbackReply is returned when the completion API is unavailable so
// the chat never dead-ends.
const tutorFallbackReply = "I couldn't reach the tutor right now. Please try again in a moment."

// TutorService generates tutor replies via an OpenAI-compatible
// chat-completions API.
type TutorService struct {
	apiKey string
	model  string
	client *http.Client
}

func NewTutorService(apiKey, model string) *TutorService {
	return &TutorService{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether an API key is configured.
func (t *TutorService) Enabled() bool {
	return t != nil && t.apiKey != ""
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Reply produces the tutor's answer to text, given the recent conversation
// history (oldest first).
func (t *TutorService) Reply(ctx context.Context, history []models.TutorMessage, text string) (string, error) {
	if !t.Enabled() {
		return "", fmt.Errorf("tutor service not configured")
	}

	messages := make([]chatCompletionMessage, 0, len(history)+2)
	messages = append(messages, chatCompletionMessage{Role: "system", Content: tutorSystemPrompt})

	start := 0
	if len(history) > tutorContextTurns {
		start = len(history) - tutorContextTurns
	}
	for _, m := range history[start:] {
		role := "user"
		if m.Role == models.TutorRoleAssistant {
			role = "assistant"
		}
		messages = append(messages, chatCompletionMessage{Role: role, Content: m.Text})
	}
	messages = append(messages, chatCompletionMessage{Role: "user", Content: text})

	reqBody := chatCompletionRequest{
		Model:       t.model,
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.7,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return "", fmt.Errorf("completion API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// ReplyWithFallback never fails: on any API error it returns the canned
// fallback so the client always gets a tutor turn.
func (t *TutorService) ReplyWithFallback(ctx context.Context, history []models.TutorMessage, text string) string {
	reply, err := t.Reply(ctx, history, text)
	if err != nil {
		return tutorFallbackReply
	}
	return reply
}
