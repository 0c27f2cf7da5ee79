package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription mirrors the user's RevenueCat entitlement state. One row per
// user, upserted on every sync.
type Subscription struct {
	UserID      uuid.UUID  `json:"user_id"`
	ProductID   string     `json:"product_id"`
	Entitlement string     `json:"entitlement"`
	Store       string     `json:"store,omitempty"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
