package progress

import (
	"testing"
	"time"
)

var testCfg = Config{
	RegenInterval:   30 * time.Minute,
	DefaultMaxLives: 5,
	AdRewardLives:   1,
	AdWatchLimit:    3,
	AdWatchWindow:   24 * time.Hour,
}

func ts(minutes int) time.Time {
	return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func stateWithLives(current, max int, last *time.Time) State {
	return State{CurrentLives: current, MaxLives: max, LastReplenish: last}
}

func TestRegenerationFirstCheckInitializesClock(t *testing.T) {
	s := stateWithLives(2, 5, nil)
	now := ts(0)

	out := CheckLifeRegeneration(s, now, testCfg)

	if out.CurrentLives != 2 {
		t.Errorf("expected no lives granted on first check, got %d", out.CurrentLives)
	}
	if out.LastReplenish == nil || !out.LastReplenish.Equal(now) {
		t.Errorf("expected LastReplenish initialized to now, got %v", out.LastReplenish)
	}
}

func TestRegenerationGrantsFloorOfElapsedOverInterval(t *testing.T) {
	last := ts(0)
	tests := []struct {
		name      string
		current   int
		checkAt   time.Time
		wantLives int
		wantLast  time.Time
	}{
		{"under one interval", 2, ts(29), 2, ts(0)},
		{"exactly one interval", 2, ts(30), 3, ts(30)},
		{"one and a half intervals", 2, ts(45), 3, ts(30)},
		{"several intervals", 1, ts(95), 4, ts(90)},
		{"capped at max", 1, ts(600), 5, ts(120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateWithLives(tt.current, 5, &last)
			out := CheckLifeRegeneration(s, tt.checkAt, testCfg)
			if out.CurrentLives != tt.wantLives {
				t.Errorf("lives = %d, want %d", out.CurrentLives, tt.wantLives)
			}
			if !out.LastReplenish.Equal(tt.wantLast) {
				t.Errorf("LastReplenish = %v, want %v", out.LastReplenish, tt.wantLast)
			}
		})
	}
}

// Remainder preservation: 45 minutes in, one life is granted with 15 minutes
// of credit kept, so the next life lands at the 60-minute mark exactly.
func TestRegenerationPreservesRemainder(t *testing.T) {
	last := ts(0)
	s := stateWithLives(3, 5, &last)

	s = CheckLifeRegeneration(s, ts(45), testCfg)
	if s.CurrentLives != 4 {
		t.Fatalf("after 45min: lives = %d, want 4", s.CurrentLives)
	}
	if !s.LastReplenish.Equal(ts(30)) {
		t.Fatalf("after 45min: LastReplenish = %v, want %v", s.LastReplenish, ts(30))
	}

	s = CheckLifeRegeneration(s, ts(60), testCfg)
	if s.CurrentLives != 5 {
		t.Errorf("after 60min: lives = %d, want 5", s.CurrentLives)
	}
	if !s.LastReplenish.Equal(ts(60)) {
		t.Errorf("after 60min: LastReplenish = %v, want %v", s.LastReplenish, ts(60))
	}
}

// While full, idle time must not be banked: losing a life after hours of
// idling and immediately checking grants nothing.
func TestNoBankingWhileFull(t *testing.T) {
	stale := ts(-600)
	s := stateWithLives(5, 5, &stale)

	s = CheckLifeRegeneration(s, ts(0), testCfg)
	if s.CurrentLives != 5 {
		t.Fatalf("full state mutated: lives = %d", s.CurrentLives)
	}
	if !s.LastReplenish.Equal(stale) {
		t.Fatalf("LastReplenish advanced while full: %v", s.LastReplenish)
	}

	s = RemoveLives(s, 1, ts(0))
	s = CheckLifeRegeneration(s, ts(0), testCfg)
	if s.CurrentLives != 4 {
		t.Errorf("instant refill after drop: lives = %d, want 4", s.CurrentLives)
	}

	// A full interval after the drop the life comes back.
	s = CheckLifeRegeneration(s, ts(30), testCfg)
	if s.CurrentLives != 5 {
		t.Errorf("lives = %d, want 5 one interval after drop", s.CurrentLives)
	}
}

func TestRegenerationMonotonic(t *testing.T) {
	last := ts(0)
	s := stateWithLives(0, 5, &last)

	prev := s.CurrentLives
	for minutes := 0; minutes <= 300; minutes += 7 {
		s = CheckLifeRegeneration(s, ts(minutes), testCfg)
		if s.CurrentLives < prev {
			t.Fatalf("lives decreased from %d to %d at t=%dmin", prev, s.CurrentLives, minutes)
		}
		if s.CurrentLives > s.MaxLives {
			t.Fatalf("lives %d exceed max %d at t=%dmin", s.CurrentLives, s.MaxLives, minutes)
		}
		prev = s.CurrentLives
	}
	if s.CurrentLives != 5 {
		t.Errorf("expected full lives after 300min, got %d", s.CurrentLives)
	}
}

func TestRegenerationClockSkewClamped(t *testing.T) {
	future := ts(120)
	s := stateWithLives(2, 5, &future)

	out := CheckLifeRegeneration(s, ts(0), testCfg)

	if out.CurrentLives != 2 {
		t.Errorf("negative elapsed granted lives: %d", out.CurrentLives)
	}
	if !out.LastReplenish.Equal(future) {
		t.Errorf("LastReplenish changed on clock skew: %v", out.LastReplenish)
	}
}

func TestRegenerationClampsMalformedState(t *testing.T) {
	last := ts(0)

	s := CheckLifeRegeneration(stateWithLives(-3, 5, &last), ts(5), testCfg)
	if s.CurrentLives != 0 {
		t.Errorf("negative lives not clamped: %d", s.CurrentLives)
	}

	s = CheckLifeRegeneration(stateWithLives(9, 5, &last), ts(5), testCfg)
	if s.CurrentLives != 5 {
		t.Errorf("overful lives not clamped: %d", s.CurrentLives)
	}
}

func TestRemoveLivesFloorsAtZero(t *testing.T) {
	last := ts(0)
	s := stateWithLives(2, 5, &last)

	out := RemoveLives(s, 10, ts(5))
	if out.CurrentLives != 0 {
		t.Errorf("lives = %d, want 0", out.CurrentLives)
	}
	// Not dropping from full, so the regen clock is untouched.
	if !out.LastReplenish.Equal(last) {
		t.Errorf("LastReplenish moved on a non-full drop: %v", out.LastReplenish)
	}
}

func TestRemoveLivesStartsClockOnDropFromFull(t *testing.T) {
	stale := ts(-500)
	s := stateWithLives(5, 5, &stale)

	out := RemoveLives(s, 2, ts(0))
	if out.CurrentLives != 3 {
		t.Fatalf("lives = %d, want 3", out.CurrentLives)
	}
	if !out.LastReplenish.Equal(ts(0)) {
		t.Errorf("regen clock not restarted at drop: %v", out.LastReplenish)
	}
}

func TestAddLivesCapped(t *testing.T) {
	s := stateWithLives(4, 5, nil)
	out := AddLives(s, 3)
	if out.CurrentLives != 5 {
		t.Errorf("lives = %d, want 5", out.CurrentLives)
	}
}

func TestAdWatchQuota(t *testing.T) {
	s := stateWithLives(1, 5, nil)
	now := ts(0)

	for i := 0; i < testCfg.AdWatchLimit; i++ {
		if !CanWatchAd(s, now, testCfg) {
			t.Fatalf("watch %d blocked unexpectedly", i+1)
		}
		s = RecordAdWatch(s, now.Add(time.Duration(i)*time.Minute), testCfg)
	}

	if CanWatchAd(s, now.Add(5*time.Minute), testCfg) {
		t.Error("quota exceeded: fourth ad allowed within window")
	}

	// Window rolls: the oldest grant expires and frees a slot.
	later := now.Add(testCfg.AdWatchWindow + time.Minute)
	s = RemoveLives(s, 3, later)
	if !CanWatchAd(s, later, testCfg) {
		t.Error("quota not released after window elapsed")
	}
}

func TestAdWatchBlockedWhenFull(t *testing.T) {
	s := stateWithLives(5, 5, nil)
	if CanWatchAd(s, ts(0), testCfg) {
		t.Error("ad reward allowed at full lives")
	}
}

func TestRecordAdWatchPrunesStaleEntries(t *testing.T) {
	s := stateWithLives(1, 5, nil)
	s.AdWatchTimes = []time.Time{ts(-3000), ts(-2000)}

	out := RecordAdWatch(s, ts(0), testCfg)
	if len(out.AdWatchTimes) != 1 {
		t.Errorf("stale ad watches kept: %d entries", len(out.AdWatchTimes))
	}
}
