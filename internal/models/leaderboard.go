package models

// LeaderboardEntry is one ranked row in the weekly XP leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	XP        int    `json:"xp"`
}
