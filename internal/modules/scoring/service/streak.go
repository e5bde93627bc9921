package scoring

import "time"

// NextStreak decides the streak value after a completion happening on
// "today". It runs only for the first correct submission of the calendar
// day; the caller checks the daily completion marker first.
//
// Rules: no previous completion starts a streak at 1; a completion exactly
// one day after the previous one extends it; any other gap (including a
// negative one from clock skew) resets to 1.
func NextStreak(current int, lastStreak *time.Time, today time.Time) int {
	if lastStreak == nil {
		return 1
	}

	if DayDiff(*lastStreak, today) == 1 {
		return current + 1
	}

	return 1
}

// DayDiff returns the whole-day calendar difference from a to b.
func DayDiff(a, b time.Time) int {
	ad := truncateToDay(a)
	bd := truncateToDay(b)
	return int(bd.Sub(ad).Hours() / 24)
}

// DayKey formats t as its YYYY-MM-DD calendar bucket.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
