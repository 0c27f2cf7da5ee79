package progress

import "time"

// CheckDailyReset rolls the per-day counters over when the calendar date has
// advanced since the stored record. Dates are compared in now's location, so
// the caller decides whose "midnight" applies (we pass the user's local
// time; see the sync handler). Idempotent within a day.
//
// Streak rules on crossing a day boundary:
//   - stored date was yesterday and the user completed at least one lesson
//     that day: the streak survives and counts that day;
//   - stored date was yesterday with no activity, or older than yesterday:
//     the streak is broken and resets to zero.
func CheckDailyReset(s State, now time.Time) State {
	today := now.Format(DateLayout)
	if s.Daily.Date == today {
		return s
	}

	yesterday := now.AddDate(0, 0, -1).Format(DateLayout)
	if s.Daily.Date == yesterday && s.Daily.LessonsCompleted > 0 {
		s.Streak.Current++
		s.Streak.LastActiveDate = s.Daily.Date
		if s.Streak.Current > s.Streak.Longest {
			s.Streak.Longest = s.Streak.Current
		}
	} else {
		s.Streak.Current = 0
	}

	s.Daily = DailyProgress{Date: today}
	return s
}

// CompleteLesson records a finished lesson: rolls the day over if needed,
// bumps the daily counters and XP, and starts a fresh streak when this is
// the first activity after a break.
func CompleteLesson(s State, now time.Time, xp int) State {
	s = CheckDailyReset(s, now)

	if xp < 0 {
		xp = 0
	}
	s.Daily.LessonsCompleted++
	s.Daily.XPEarned += xp
	s.XP += xp
	s.Streak.LastActiveDate = s.Daily.Date

	if s.Streak.Current == 0 {
		s.Streak.Current = 1
		if s.Streak.Longest < 1 {
			s.Streak.Longest = 1
		}
	}
	return s
}
