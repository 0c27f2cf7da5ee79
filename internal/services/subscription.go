package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/models"
)

const (
	revenueCatBaseURL = "https://api.revenuecat.com/v1"
	// premiumEntitlement is the RevenueCat entitlement that unlocks
	// unlimited lives and offline content.
	premiumEntitlement = "premium"
)

// SubscriptionService queries RevenueCat for a subscriber's entitlements
// and mirrors the result into the subscriptions table.
type SubscriptionService struct {
	apiKey string
	client *http.Client
}

func NewSubscriptionService(apiKey string) *SubscriptionService {
	return &SubscriptionService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// revenueCatSubscriber is the subset of the GET /subscribers response we
// care about.
type revenueCatSubscriber struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate       *time.Time `json:"expires_date"`
			ProductIdentifier string     `json:"product_identifier"`
		} `json:"entitlements"`
		Subscriptions map[string]struct {
			Store string `json:"store"`
		} `json:"subscriptions"`
	} `json:"subscriber"`
}

// Sync fetches the user's current entitlements from RevenueCat and upserts
// the subscriptions row. Returns the stored state.
func (s *SubscriptionService) Sync(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("revenuecat api key not configured")
	}

	url := fmt.Sprintf("%s/subscribers/%s", revenueCatBaseURL, userID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("revenuecat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("revenuecat returned status %d", resp.StatusCode)
	}

	var payload revenueCatSubscriber
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode revenuecat response: %w", err)
	}

	sub := models.Subscription{
		UserID:      userID,
		Entitlement: premiumEntitlement,
		UpdatedAt:   time.Now().UTC(),
	}

	if ent, ok := payload.Subscriber.Entitlements[premiumEntitlement]; ok {
		sub.ProductID = ent.ProductIdentifier
		sub.ExpiresAt = ent.ExpiresDate
		// A nil expires_date means a lifetime purchase.
		sub.IsActive = ent.ExpiresDate == nil || ent.ExpiresDate.After(time.Now())
		if prod, ok := payload.Subscriber.Subscriptions[ent.ProductIdentifier]; ok {
			sub.Store = prod.Store
		}
	}

	if err := upsertSubscription(sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func upsertSubscription(sub models.Subscription) error {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO subscriptions (user_id, product_id, entitlement, store, is_active, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			product_id = $2,
			entitlement = $3,
			store = $4,
			is_active = $5,
			expires_at = $6,
			updated_at = NOW()
	`, sub.UserID, sub.ProductID, sub.Entitlement, sub.Store, sub.IsActive, sub.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// HasActiveSubscription reports whether the user currently holds the
// premium entitlement according to the last sync.
func HasActiveSubscription(userID uuid.UUID) (bool, error) {
	var active bool
	var expiresAt sql.NullTime
	err := database.PostgresDB.QueryRow(`
		SELECT is_active, expires_at FROM subscriptions WHERE user_id = $1
	`, userID).Scan(&active, &expiresAt)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if active && expiresAt.Valid && expiresAt.Time.Before(time.Now()) {
		// Entitlement lapsed since the last sync.
		return false, nil
	}
	return active, nil
}

// GetSubscription returns the stored subscription row, or nil when the
// user has never synced.
func GetSubscription(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	var store sql.NullString
	var expiresAt sql.NullTime

	err := database.PostgresDB.QueryRow(`
		SELECT user_id, product_id, entitlement, store, is_active, expires_at, updated_at
		FROM subscriptions WHERE user_id = $1
	`, userID).Scan(&sub.UserID, &sub.ProductID, &sub.Entitlement, &store, &sub.IsActive, &expiresAt, &sub.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sub.Store = store.String
	if expiresAt.Valid {
		t := expiresAt.Time
		sub.ExpiresAt = &t
	}
	return &sub, nil
}
