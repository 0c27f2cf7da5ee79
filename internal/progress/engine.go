package progress

import "time"

// Config holds the gameplay tuning constants. The zero value is not usable;
// call DefaultConfig.
type Config struct {
	// RegenInterval is how long it takes to restore one life.
	RegenInterval time.Duration
	// DefaultMaxLives is the life cap for a fresh account.
	DefaultMaxLives int
	// AdRewardLives is how many lives a rewarded ad grants.
	AdRewardLives int
	// AdWatchLimit is the maximum number of ad rewards per AdWatchWindow.
	AdWatchLimit int
	// AdWatchWindow is the rolling window for ad-reward rate limiting.
	AdWatchWindow time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		RegenInterval:   30 * time.Minute,
		DefaultMaxLives: 5,
		AdRewardLives:   1,
		AdWatchLimit:    3,
		AdWatchWindow:   24 * time.Hour,
	}
}

// CheckLifeRegeneration grants the lives that have accrued since the last
// replenish and returns the updated state. Pure: the caller supplies the
// clock and persists the result.
//
// The replenish timestamp advances by exactly granted*interval rather than
// to now, so partial progress toward the next life is never lost. While
// lives are full the timestamp is deliberately not advanced; the regen
// clock restarts in RemoveLives at the moment a life is spent.
func CheckLifeRegeneration(s State, now time.Time, cfg Config) State {
	s = clamp(s)

	if s.CurrentLives >= s.MaxLives {
		return s
	}

	// First-ever check: start measuring from here, grant nothing.
	if s.LastReplenish == nil {
		t := now
		s.LastReplenish = &t
		return s
	}

	elapsed := now.Sub(*s.LastReplenish)
	if elapsed <= 0 || cfg.RegenInterval <= 0 {
		// Clock skew (or nonsense config): no regeneration, no error.
		return s
	}

	livesToAdd := int(elapsed / cfg.RegenInterval)
	if livesToAdd > s.MaxLives-s.CurrentLives {
		livesToAdd = s.MaxLives - s.CurrentLives
	}
	if livesToAdd <= 0 {
		return s
	}

	s.CurrentLives += livesToAdd
	t := s.LastReplenish.Add(time.Duration(livesToAdd) * cfg.RegenInterval)
	s.LastReplenish = &t
	return s
}

// RemoveLives spends count lives, flooring at zero. Dropping below the cap
// for the first time starts the regeneration clock at now.
func RemoveLives(s State, count int, now time.Time) State {
	s = clamp(s)
	if count <= 0 {
		return s
	}

	wasFull := s.CurrentLives >= s.MaxLives

	s.CurrentLives -= count
	if s.CurrentLives < 0 {
		s.CurrentLives = 0
	}

	if wasFull && s.CurrentLives < s.MaxLives {
		t := now
		s.LastReplenish = &t
	}
	return s
}

// AddLives grants count lives (level-up bonus, purchase, ad reward), capped
// at MaxLives.
func AddLives(s State, count int) State {
	s = clamp(s)
	if count <= 0 {
		return s
	}
	s.CurrentLives += count
	if s.CurrentLives > s.MaxLives {
		s.CurrentLives = s.MaxLives
	}
	return s
}

// CanWatchAd reports whether the user is still within the rolling ad-reward
// quota and has room for more lives.
func CanWatchAd(s State, now time.Time, cfg Config) bool {
	s = clamp(s)
	if s.CurrentLives >= s.MaxLives {
		return false
	}
	return countRecentAdWatches(s, now, cfg) < cfg.AdWatchLimit
}

// RecordAdWatch grants the ad reward and records the grant time. Stale
// entries outside the window are pruned so the list stays bounded.
func RecordAdWatch(s State, now time.Time, cfg Config) State {
	s = AddLives(s, cfg.AdRewardLives)

	recent := make([]time.Time, 0, len(s.AdWatchTimes)+1)
	cutoff := now.Add(-cfg.AdWatchWindow)
	for _, t := range s.AdWatchTimes {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	s.AdWatchTimes = append(recent, now)
	return s
}

func countRecentAdWatches(s State, now time.Time, cfg Config) int {
	cutoff := now.Add(-cfg.AdWatchWindow)
	n := 0
	for _, t := range s.AdWatchTimes {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
