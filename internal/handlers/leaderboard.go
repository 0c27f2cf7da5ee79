package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kalimapp/kalima-backend/internal/models"
	"github.com/kalimapp/kalima-backend/internal/services"
)

type LeaderboardResponse struct {
	Week     string                    `json:"week"`
	Entries  []models.LeaderboardEntry `json:"entries"`
	OwnRank  int                       `json:"own_rank"`
	OwnXP    int                       `json:"own_xp"`
	Resolved string                    `json:"resolved_at"`
}

// GetLeaderboard returns the current week's top entries with the caller's
// own rank appended. The entry list is cached briefly; the caller's rank is
// always resolved fresh since it is a single Redis lookup.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	ctx := r.Context()
	now := time.Now()
	cacheKey := fmt.Sprintf("%s:top%d", services.WeeklyLeaderboardKey(now), limit)

	var entries []models.LeaderboardEntry
	hit, _ := services.Cache.Get(ctx, cacheKey, &entries)
	if !hit {
		var err error
		entries, err = services.GetWeeklyLeaderboard(ctx, now, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load leaderboard")
			return
		}
		// Cache failures never block the response.
		_ = services.Cache.Set(ctx, cacheKey, entries)
	}

	rank, xp, err := services.GetLeaderboardRank(ctx, userID, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve rank")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: LeaderboardResponse{
			Week:     services.WeeklyLeaderboardKey(now),
			Entries:  entries,
			OwnRank:  rank,
			OwnXP:    xp,
			Resolved: now.UTC().Format(time.RFC3339),
		},
	})
}
