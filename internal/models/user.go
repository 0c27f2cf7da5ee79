package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the public account record. Accounts are username-only; no email
// or phone is collected at signup.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}
