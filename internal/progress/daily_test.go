package progress

import (
	"reflect"
	"testing"
	"time"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestDailyResetSameDayIsNoop(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-10", LessonsCompleted: 2, XPEarned: 40},
		Streak: StreakData{Current: 4, Longest: 6},
	}

	out := CheckDailyReset(s, day(10, 23))

	if out.Daily.LessonsCompleted != 2 || out.Streak.Current != 4 {
		t.Errorf("same-day reset mutated state: %+v", out)
	}
}

func TestDailyResetIdempotent(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-09", LessonsCompleted: 1},
		Streak: StreakData{Current: 2, Longest: 2},
	}

	first := CheckDailyReset(s, day(10, 8))
	second := CheckDailyReset(first, day(10, 20))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second reset on the same day changed state:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDailyResetStreakContinuesAfterActiveYesterday(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-09", LessonsCompleted: 3, XPEarned: 60},
		Streak: StreakData{Current: 4, Longest: 4, LastActiveDate: "2026-03-09"},
	}

	out := CheckDailyReset(s, day(10, 8))

	if out.Streak.Current != 5 {
		t.Errorf("streak = %d, want 5", out.Streak.Current)
	}
	if out.Streak.Longest != 5 {
		t.Errorf("longest = %d, want 5", out.Streak.Longest)
	}
	if out.Daily.Date != "2026-03-10" || out.Daily.LessonsCompleted != 0 || out.Daily.XPEarned != 0 {
		t.Errorf("daily counters not reset: %+v", out.Daily)
	}
}

func TestDailyResetStreakBreaksOnIdleYesterday(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-09", LessonsCompleted: 0},
		Streak: StreakData{Current: 4, Longest: 6},
	}

	out := CheckDailyReset(s, day(10, 8))

	if out.Streak.Current != 0 {
		t.Errorf("streak = %d, want 0 after idle day", out.Streak.Current)
	}
	if out.Streak.Longest != 6 {
		t.Errorf("longest streak lost: %d", out.Streak.Longest)
	}
}

func TestDailyResetStreakBreaksOnGap(t *testing.T) {
	// Active two days ago but nothing yesterday: the gap kills the streak
	// even though the last recorded day had lessons.
	s := State{
		Daily:  DailyProgress{Date: "2026-03-07", LessonsCompleted: 5},
		Streak: StreakData{Current: 9, Longest: 9},
	}

	out := CheckDailyReset(s, day(10, 8))

	if out.Streak.Current != 0 {
		t.Errorf("streak = %d, want 0 after gap", out.Streak.Current)
	}
}

func TestDailyResetUsesLocalCalendar(t *testing.T) {
	// 23:30 UTC on March 9 is already March 10 in UTC+3; the rollover must
	// follow the clock the caller passes in.
	loc := time.FixedZone("UTC+3", 3*60*60)
	s := State{
		Daily:  DailyProgress{Date: "2026-03-09", LessonsCompleted: 1},
		Streak: StreakData{Current: 1, Longest: 1},
	}

	nowUTC := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	out := CheckDailyReset(s, nowUTC.In(loc))

	if out.Daily.Date != "2026-03-10" {
		t.Errorf("date = %q, want 2026-03-10 in UTC+3", out.Daily.Date)
	}
	if out.Streak.Current != 2 {
		t.Errorf("streak = %d, want 2", out.Streak.Current)
	}
}

func TestCompleteLessonCountsAndStartsStreak(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-10"},
		Streak: StreakData{Current: 0, Longest: 3},
	}

	out := CompleteLesson(s, day(10, 9), 20)

	if out.Daily.LessonsCompleted != 1 || out.Daily.XPEarned != 20 {
		t.Errorf("daily counters wrong: %+v", out.Daily)
	}
	if out.XP != 20 {
		t.Errorf("total XP = %d, want 20", out.XP)
	}
	if out.Streak.Current != 1 {
		t.Errorf("streak = %d, want 1 after first activity", out.Streak.Current)
	}
	if out.Streak.LastActiveDate != "2026-03-10" {
		t.Errorf("last active date = %q", out.Streak.LastActiveDate)
	}
}

func TestCompleteLessonRollsStaleDayFirst(t *testing.T) {
	s := State{
		Daily:  DailyProgress{Date: "2026-03-09", LessonsCompleted: 4, XPEarned: 80},
		Streak: StreakData{Current: 2, Longest: 2, LastActiveDate: "2026-03-09"},
	}

	out := CompleteLesson(s, day(10, 7), 15)

	if out.Daily.Date != "2026-03-10" {
		t.Fatalf("date not rolled: %q", out.Daily.Date)
	}
	if out.Daily.LessonsCompleted != 1 || out.Daily.XPEarned != 15 {
		t.Errorf("stale counters leaked into new day: %+v", out.Daily)
	}
	// Yesterday was active, so the boundary crossing extends the streak.
	if out.Streak.Current != 3 {
		t.Errorf("streak = %d, want 3", out.Streak.Current)
	}
}

func TestCompleteLessonIgnoresNegativeXP(t *testing.T) {
	s := State{Daily: DailyProgress{Date: "2026-03-10"}}
	out := CompleteLesson(s, day(10, 9), -50)
	if out.XP != 0 || out.Daily.XPEarned != 0 {
		t.Errorf("negative XP applied: total=%d daily=%d", out.XP, out.Daily.XPEarned)
	}
}
