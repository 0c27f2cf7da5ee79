package handlers

import (
	"net/http"

	"github.com/kalimapp/kalima-backend/internal/services"
)

// Subscriptions holds the handlers that talk to the RevenueCat-backed
// subscription service.
type Subscriptions struct {
	Service *services.SubscriptionService
}

// Sync pulls the caller's current entitlement from RevenueCat and stores it.
// The app calls this after a purchase and on launch.
func (h *Subscriptions) Sync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sub, err := h.Service.Sync(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to sync subscription")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Subscription synced", Data: sub})
}

// Status returns the stored subscription row without contacting RevenueCat.
func (h *Subscriptions) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	sub, err := services.GetSubscription(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	active, err := services.HasActiveSubscription(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"is_premium":   active,
			"subscription": sub,
		},
	})
}
