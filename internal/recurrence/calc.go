package recurrence

import "time"

// NextDueAt computes the next due instant after a completion.
//
// The next due instant is always derived from the actual completion instant,
// never from the previous due instant. A chore completed late restarts its
// cycle from the completion, so a single late completion cannot permanently
// shift the schedule earlier or pile up a backlog of overdue occurrences.
//
// The value parameter is ignored for Daily and Weekly. Callers validate
// value >= 1 before reaching this function; see chore.NewChore.
func NextDueAt(kind Interval, value int, completedAt time.Time) time.Time {
	switch kind {
	case Daily:
		return completedAt.AddDate(0, 0, 1)
	case Weekly:
		return completedAt.AddDate(0, 0, 7)
	case Monthly:
		return addMonths(completedAt, value)
	case Yearly:
		return addMonths(completedAt, 12*value)
	case Custom:
		return completedAt.AddDate(0, 0, value)
	}
	return time.Time{}
}

// addMonths advances t by n calendar months, clamping the day of month to the
// last valid day of the target month. Completing on Jan 31 with a one-month
// interval lands on Feb 28 (or Feb 29 in a leap year), not Mar 2/3 as
// time.AddDate's normalization would give.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	anchor := time.Date(year, month+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
