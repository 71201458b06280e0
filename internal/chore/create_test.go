package chore

import (
	"errors"
	"testing"
	"time"

	"github.com/mross/choreboard/internal/recurrence"
)

func TestNewChoreSeedsInitialDue(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	c, err := NewChore(NewChoreInput{
		HouseholdID:   "hh-1",
		Name:          "Water plants",
		IntervalType:  recurrence.Custom,
		IntervalValue: 3,
	}, created)
	if err != nil {
		t.Fatalf("new chore: %v", err)
	}

	want := created.AddDate(0, 0, 3)
	if !c.DueAt.Equal(want) {
		t.Errorf("due = %v, want %v", c.DueAt, want)
	}
	if c.ID == "" {
		t.Error("id should be minted")
	}
	if c.Version != 1 {
		t.Errorf("version = %d, want 1", c.Version)
	}
	if c.LastCompletion != nil {
		t.Error("new chore must have no completion record")
	}
}

func TestNewChoreNormalizesDailyValue(t *testing.T) {
	c, err := NewChore(NewChoreInput{
		Name:          "Dishes",
		IntervalType:  recurrence.Daily,
		IntervalValue: 5, // ignored for daily
	}, time.Now())
	if err != nil {
		t.Fatalf("new chore: %v", err)
	}
	if c.IntervalValue != 1 {
		t.Errorf("interval value = %d, want normalized 1", c.IntervalValue)
	}
}

func TestNewChoreRejectsBadInterval(t *testing.T) {
	_, err := NewChore(NewChoreInput{
		Name:          "Dust shelves",
		IntervalType:  recurrence.Monthly,
		IntervalValue: 0,
	}, time.Now())
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("zero value: got %v, want ErrInvalidInterval", err)
	}

	_, err = NewChore(NewChoreInput{
		Name:          "Dust shelves",
		IntervalType:  recurrence.Interval(42),
		IntervalValue: 1,
	}, time.Now())
	if !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("unknown kind: got %v, want ErrInvalidInterval", err)
	}
}
