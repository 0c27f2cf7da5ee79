package services

import (
	"testing"
	"time"
)

func TestWeeklyLeaderboardKey(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		// Jan 1 2026 falls in ISO week 1 of 2026.
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "leaderboard:weekly:2026-W01"},
		// Dec 29 2025 is a Monday and already belongs to 2026-W01.
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), "leaderboard:weekly:2026-W01"},
		{time.Date(2026, 7, 15, 23, 59, 0, 0, time.UTC), "leaderboard:weekly:2026-W29"},
	}

	for _, c := range cases {
		if got := WeeklyLeaderboardKey(c.at); got != c.want {
			t.Errorf("WeeklyLeaderboardKey(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}

func TestWeeklyLeaderboardKeyRollover(t *testing.T) {
	sunday := time.Date(2026, 1, 4, 23, 0, 0, 0, time.UTC)
	monday := sunday.Add(2 * time.Hour)
	if WeeklyLeaderboardKey(sunday) == WeeklyLeaderboardKey(monday) {
		t.Error("Sunday night and Monday morning should land in different weekly boards")
	}
}
