package progress

import (
	"encoding/json"
	"time"
)

const (
	// DateLayout is the calendar-date format used for daily tracking.
	DateLayout = "2006-01-02"
)

// DailyProgress tracks per-day counters. Date is a YYYY-MM-DD string in the
// user's local calendar; counters are zeroed when the date rolls over.
type DailyProgress struct {
	Date             string `json:"date"`
	LessonsCompleted int    `json:"lessons_completed"`
	XPEarned         int    `json:"xp_earned"`
}

// StreakData tracks consecutive active days.
type StreakData struct {
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	LastActiveDate string `json:"last_active_date"`
}

// State is the user-progress record the engine operates on. All engine
// functions take a State by value and return a new one; callers persist the
// result. Extra holds any persisted fields the engine does not know about so
// a read-modify-write cycle never drops them.
type State struct {
	CurrentLives  int        `json:"current_lives"`
	MaxLives      int        `json:"max_lives"`
	LastReplenish *time.Time `json:"last_replenish_time,omitempty"`

	XP    int           `json:"xp"`
	Level int           `json:"level"`
	Daily DailyProgress `json:"daily_progress"`

	Streak StreakData `json:"streak_data"`

	AdWatchTimes []time.Time `json:"ad_watch_times,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// knownStateKeys are the JSON keys State marshals itself; everything else in
// a stored blob is carried through Extra untouched.
var knownStateKeys = map[string]struct{}{
	"current_lives":       {},
	"max_lives":           {},
	"last_replenish_time": {},
	"xp":                  {},
	"level":               {},
	"daily_progress":      {},
	"streak_data":         {},
	"ad_watch_times":      {},
}

// stateAlias avoids recursing into State's own marshal methods.
type stateAlias State

// UnmarshalJSON decodes the known fields and stashes unrecognized keys in
// Extra so they round-trip through storage.
func (s *State) UnmarshalJSON(data []byte) error {
	var alias stateAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if _, known := knownStateKeys[key]; known {
			delete(raw, key)
		}
	}
	if len(raw) == 0 {
		raw = nil
	}

	*s = State(alias)
	s.Extra = raw
	return nil
}

// MarshalJSON re-emits the known fields plus any preserved unknown ones.
func (s State) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(stateAlias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, val := range s.Extra {
		if _, clash := merged[key]; clash {
			continue
		}
		merged[key] = val
	}
	return json.Marshal(merged)
}

// NewState returns the default record created on first launch / signup.
func NewState(cfg Config, now time.Time) State {
	today := now.Format(DateLayout)
	return State{
		CurrentLives: cfg.DefaultMaxLives,
		MaxLives:     cfg.DefaultMaxLives,
		Level:        1,
		Daily:        DailyProgress{Date: today},
		Streak:       StreakData{LastActiveDate: today},
	}
}

// clamp enforces the lives invariants on records that may have been stored
// by an older client: 0 <= CurrentLives <= MaxLives, MaxLives >= 1.
func clamp(s State) State {
	if s.MaxLives < 1 {
		s.MaxLives = 1
	}
	if s.CurrentLives < 0 {
		s.CurrentLives = 0
	}
	if s.CurrentLives > s.MaxLives {
		s.CurrentLives = s.MaxLives
	}
	return s
}
