package chore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mross/choreboard/internal/database"
	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/recurrence"
	"github.com/mross/choreboard/internal/store"
)

func setupMachineTest(t *testing.T) (*Machine, *store.ChoreStore, string) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hh, err := store.NewHouseholdStore(db).Create("Testhouse")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	cs := store.NewChoreStore(db)
	return NewMachine(cs), cs, hh.ID
}

func createTestChore(t *testing.T, cs *store.ChoreStore, householdID string, kind recurrence.Interval, value int, dueAt time.Time) *model.Chore {
	t.Helper()
	c, err := NewChore(NewChoreInput{
		HouseholdID:   householdID,
		Name:          "Take out trash",
		IntervalType:  kind,
		IntervalValue: value,
	}, dueAt.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("new chore: %v", err)
	}
	c.DueAt = dueAt
	if err := cs.Create(context.Background(), c); err != nil {
		t.Fatalf("create chore: %v", err)
	}
	return c
}

func TestCompleteAdvancesDue(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	due := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, due)

	completedAt := time.Date(2024, 3, 1, 20, 15, 0, 0, time.UTC)
	m.now = func() time.Time { return completedAt }

	got, err := m.Complete(context.Background(), c.ID, "user-1", c.Version)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	wantDue := completedAt.Add(24 * time.Hour)
	if !got.DueAt.Equal(wantDue) {
		t.Errorf("due = %v, want %v", got.DueAt, wantDue)
	}
	if got.LastCompletion == nil {
		t.Fatal("expected completion record")
	}
	if got.LastCompletion.CompletedBy != "user-1" {
		t.Errorf("completed_by = %q, want %q", got.LastCompletion.CompletedBy, "user-1")
	}
	if !got.LastCompletion.PreviousDueAt.Equal(due) {
		t.Errorf("previous_due = %v, want %v", got.LastCompletion.PreviousDueAt, due)
	}
	if got.Version != c.Version+1 {
		t.Errorf("version = %d, want %d", got.Version, c.Version+1)
	}

	// The stored chore agrees with the returned one.
	stored, err := cs.GetChore(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.DueAt.Equal(wantDue) || stored.LastCompletion == nil {
		t.Error("stored chore does not reflect the completion")
	}
}

func TestCompleteUndoRoundTrip(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	due := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := createTestChore(t, cs, hh, recurrence.Weekly, 1, due)

	completed, err := m.Complete(context.Background(), c.ID, "user-1", c.Version)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	restored, err := m.Undo(context.Background(), c.ID, "user-1", completed.Version)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}

	if !restored.DueAt.Equal(due) {
		t.Errorf("due after undo = %v, want exact pre-completion value %v", restored.DueAt, due)
	}
	if restored.LastCompletion != nil {
		t.Error("completion record should be cleared by undo")
	}

	stored, err := cs.GetChore(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.DueAt.Equal(due) || stored.LastCompletion != nil {
		t.Error("stored chore does not reflect the undo")
	}
}

func TestUndoTwiceFails(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	completed, err := m.Complete(context.Background(), c.ID, "user-1", c.Version)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	restored, err := m.Undo(context.Background(), c.ID, "user-1", completed.Version)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}

	_, err = m.Undo(context.Background(), c.ID, "user-1", restored.Version)
	if !errors.Is(err, ErrNotUndoable) {
		t.Errorf("second undo: got %v, want ErrNotUndoable", err)
	}
}

func TestSecondCompleteReplacesRecord(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	first, err := m.Complete(context.Background(), c.ID, "user-1", c.Version)
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	firstDue := first.DueAt

	second, err := m.Complete(context.Background(), c.ID, "user-2", first.Version)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}

	if second.LastCompletion.CompletedBy != "user-2" {
		t.Errorf("completed_by = %q, want user-2 (record replaced, not stacked)", second.LastCompletion.CompletedBy)
	}
	if !second.LastCompletion.PreviousDueAt.Equal(firstDue) {
		t.Errorf("previous_due = %v, want %v", second.LastCompletion.PreviousDueAt, firstDue)
	}

	// Undo now reverts only the second completion.
	restored, err := m.Undo(context.Background(), c.ID, "user-2", second.Version)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !restored.DueAt.Equal(firstDue) {
		t.Errorf("due after undo = %v, want %v", restored.DueAt, firstDue)
	}
}

func TestCompleteStaleVersionConflict(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	if _, err := m.Complete(context.Background(), c.ID, "user-1", c.Version); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// A second writer still holding the original version must not silently
	// overwrite.
	_, err := m.Complete(context.Background(), c.ID, "user-2", c.Version)
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("stale complete: got %v, want ErrConflict", err)
	}

	stored, err := cs.GetChore(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.LastCompletion.CompletedBy != "user-1" {
		t.Errorf("completed_by = %q, want the first writer", stored.LastCompletion.CompletedBy)
	}
}

func TestCompleteMissingChore(t *testing.T) {
	m, _, _ := setupMachineTest(t)

	_, err := m.Complete(context.Background(), "nope", "user-1", 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUndoStaleVersionConflict(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	first, err := m.Complete(context.Background(), c.ID, "user-1", c.Version)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := m.Complete(context.Background(), c.ID, "user-2", first.Version); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	_, err = m.Undo(context.Background(), c.ID, "user-1", first.Version)
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("stale undo: got %v, want ErrConflict", err)
	}
}

func TestConcurrentCompleteOneWins(t *testing.T) {
	m, cs, hh := setupMachineTest(t)
	c := createTestChore(t, cs, hh, recurrence.Daily, 1, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	users := []string{"user-1", "user-2"}
	errs := make([]error, len(users))

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = m.Complete(context.Background(), c.ID, u, c.Version)
		}()
	}
	wg.Wait()

	var winners, conflicts int
	var winner string
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = users[i]
		case errors.Is(err, store.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 || conflicts != 1 {
		t.Fatalf("winners = %d, conflicts = %d; want exactly one of each", winners, conflicts)
	}

	stored, err := cs.GetChore(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.LastCompletion == nil || stored.LastCompletion.CompletedBy != winner {
		t.Errorf("stored completed_by should reflect only the winner %q", winner)
	}
}
