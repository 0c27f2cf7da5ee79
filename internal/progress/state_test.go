package progress

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatePreservesUnknownFieldsAcrossReadModifyWrite(t *testing.T) {
	// A blob written by a newer client with fields this build doesn't know.
	blob := []byte(`{
		"current_lives": 3,
		"max_lives": 5,
		"xp": 120,
		"level": 2,
		"daily_progress": {"date": "2026-03-09", "lessons_completed": 2, "xp_earned": 40},
		"streak_data": {"current": 3, "longest": 5, "last_active_date": "2026-03-09"},
		"gems": 250,
		"avatar_frame": "gold",
		"experiments": {"new_lesson_flow": true}
	}`)

	var s State
	if err := json.Unmarshal(blob, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.CurrentLives != 3 || s.XP != 120 {
		t.Fatalf("known fields not decoded: %+v", s)
	}

	// Mutate through the engine, then write back.
	s = RemoveLives(s, 1, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	s = CheckDailyReset(s, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	for _, key := range []string{"gems", "avatar_frame", "experiments"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("unknown field %q dropped on write-back", key)
		}
	}
	if string(raw["gems"]) != "250" {
		t.Errorf("gems = %s, want 250", raw["gems"])
	}

	var lives int
	if err := json.Unmarshal(raw["current_lives"], &lives); err != nil || lives != 2 {
		t.Errorf("current_lives = %s, want 2", raw["current_lives"])
	}
}

func TestStateRoundTripWithoutExtra(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	s := NewState(DefaultConfig(), now)
	s = RemoveLives(s, 1, now)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.CurrentLives != s.CurrentLives || back.MaxLives != s.MaxLives {
		t.Errorf("lives did not round-trip: %+v", back)
	}
	if back.LastReplenish == nil || !back.LastReplenish.Equal(now) {
		t.Errorf("LastReplenish did not round-trip: %v", back.LastReplenish)
	}
	if back.Extra != nil {
		t.Errorf("spurious extra fields: %v", back.Extra)
	}
}

func TestNewStateDefaults(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	s := NewState(DefaultConfig(), now)

	if s.CurrentLives != 5 || s.MaxLives != 5 {
		t.Errorf("default lives = %d/%d, want 5/5", s.CurrentLives, s.MaxLives)
	}
	if s.Level != 1 {
		t.Errorf("default level = %d, want 1", s.Level)
	}
	if s.Daily.Date != "2026-03-10" {
		t.Errorf("daily date = %q", s.Daily.Date)
	}
	if s.LastReplenish != nil {
		t.Errorf("fresh state should have no replenish timestamp")
	}
}
