package recurrence

import (
	"testing"
	"time"
)

func TestNextDueAtDaily(t *testing.T) {
	completed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	got := NextDueAt(Daily, 1, completed)
	want := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("daily: got %v, want %v", got, want)
	}
}

func TestNextDueAtWeekly(t *testing.T) {
	completed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	got := NextDueAt(Weekly, 1, completed)
	want := time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("weekly: got %v, want %v", got, want)
	}
}

func TestNextDueAtMonthlyClampLeapYear(t *testing.T) {
	// Completing on Jan 31 with a 1-month interval lands on the last day of
	// February. 2024 is a leap year.
	completed := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got := NextDueAt(Monthly, 1, completed)
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthly clamp: got %v, want %v", got, want)
	}
}

func TestNextDueAtMonthlyClampNonLeap(t *testing.T) {
	completed := time.Date(2023, 1, 31, 12, 30, 0, 0, time.UTC)
	got := NextDueAt(Monthly, 1, completed)
	want := time.Date(2023, 2, 28, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthly clamp: got %v, want %v", got, want)
	}
}

func TestNextDueAtMonthlyNoClamp(t *testing.T) {
	completed := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	got := NextDueAt(Monthly, 3, completed)
	want := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthly: got %v, want %v", got, want)
	}
}

func TestNextDueAtYearlyLeapDay(t *testing.T) {
	// Feb 29 + 1 year clamps to Feb 28 of the non-leap year.
	completed := time.Date(2024, 2, 29, 7, 0, 0, 0, time.UTC)
	got := NextDueAt(Yearly, 1, completed)
	want := time.Date(2025, 2, 28, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("yearly leap clamp: got %v, want %v", got, want)
	}

	// Four years later the leap day exists again.
	got = NextDueAt(Yearly, 4, completed)
	want = time.Date(2028, 2, 29, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("yearly leap-to-leap: got %v, want %v", got, want)
	}
}

func TestNextDueAtCustom(t *testing.T) {
	completed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	got := NextDueAt(Custom, 10, completed)
	want := time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("custom: got %v, want %v", got, want)
	}
}

func TestNextDueAtAlwaysAdvances(t *testing.T) {
	kinds := []Interval{Daily, Weekly, Monthly, Yearly, Custom}
	starts := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 31, 6, 30, 0, 0, time.UTC),
	}

	for _, kind := range kinds {
		for _, value := range []int{1, 2, 7, 13} {
			for _, start := range starts {
				got := NextDueAt(kind, value, start)
				if !got.After(start) {
					t.Errorf("NextDueAt(%s, %d, %v) = %v, not after completion", kind, value, start, got)
				}
			}
		}
	}
}
