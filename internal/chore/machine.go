package chore

import (
	"context"
	"fmt"
	"time"

	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/recurrence"
	"github.com/mross/choreboard/internal/store"
)

// Store is the version-guarded document store the state machine reads and
// writes through. Write applies the mutation atomically iff the stored
// version still equals expectedVersion; it returns store.ErrConflict on a
// stale version and store.ErrNotFound when the chore is gone.
type Store interface {
	GetChore(ctx context.Context, id string) (*model.Chore, error)
	WriteChore(ctx context.Context, id string, mut store.ChoreMutation, expectedVersion int64) (int64, error)
}

// Machine applies complete/undo transitions to chores. It is stateless; all
// state lives in the store, guarded by the version token, so concurrent
// machines on different devices are safe against each other.
type Machine struct {
	store Store
	now   func() time.Time
}

func NewMachine(s Store) *Machine {
	return &Machine{store: s, now: time.Now}
}

// Complete marks the chore done by userID and advances its due instant.
//
// The previous due instant is captured in a completion record so the action
// can be undone. Completing an already-completed chore replaces the record:
// only the most recent completion is ever undoable.
func (m *Machine) Complete(ctx context.Context, choreID, userID string, expectedVersion int64) (*model.Chore, error) {
	c, err := m.store.GetChore(ctx, choreID)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	rec := &model.CompletionRecord{
		CompletedAt:   now,
		CompletedBy:   userID,
		PreviousDueAt: c.DueAt,
	}
	mut := store.ChoreMutation{
		DueAt:          recurrence.NextDueAt(c.IntervalType, c.IntervalValue, now),
		LastCompletion: rec,
	}

	newVersion, err := m.store.WriteChore(ctx, choreID, mut, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("complete chore: %w", err)
	}

	c.DueAt = mut.DueAt
	c.LastCompletion = rec
	c.Version = newVersion
	c.UpdatedAt = now
	return c, nil
}

// Undo reverts the chore's most recent completion, restoring the due instant
// captured when it was completed and clearing the completion record.
//
// Undo with no active completion record returns ErrNotUndoable: the caller
// was acting on a stale view and the action no longer makes sense, so it is
// reported rather than retried.
func (m *Machine) Undo(ctx context.Context, choreID, userID string, expectedVersion int64) (*model.Chore, error) {
	c, err := m.store.GetChore(ctx, choreID)
	if err != nil {
		return nil, err
	}
	if c.LastCompletion == nil {
		return nil, ErrNotUndoable
	}

	mut := store.ChoreMutation{
		DueAt:          c.LastCompletion.PreviousDueAt,
		LastCompletion: nil,
	}

	newVersion, err := m.store.WriteChore(ctx, choreID, mut, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("undo completion: %w", err)
	}

	c.DueAt = mut.DueAt
	c.LastCompletion = nil
	c.Version = newVersion
	c.UpdatedAt = m.now().UTC()
	return c, nil
}
