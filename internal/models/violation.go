package models

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType classifies a moderated content hit.
type ViolationType string

const (
	ViolationUsername ViolationType = "username"
	ViolationChat     ViolationType = "chat"
)

// Violation is a moderation record tied to an IP (and user, when known).
type Violation struct {
	ID          uuid.UUID     `json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UserID      *uuid.UUID    `json:"user_id,omitempty"`
	IPAddress   string        `json:"ip_address"`
	Type        ViolationType `json:"type"`
	Content     string        `json:"content"`
	ActionTaken string        `json:"action_taken"`
}

// BlockedIP is an active or historical IP block.
type BlockedIP struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
	Reason    string    `json:"reason"`
	IsActive  bool      `json:"is_active"`
}
