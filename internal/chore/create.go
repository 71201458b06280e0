package chore

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mross/choreboard/internal/model"
	"github.com/mross/choreboard/internal/recurrence"
)

// ErrNotUndoable is returned by Undo when the chore has no active completion
// record.
var ErrNotUndoable = errors.New("chore has no completion to undo")

// ErrInvalidInterval reports creation input whose interval kind or value is
// outside the accepted set.
var ErrInvalidInterval = errors.New("invalid interval")

// NewChoreInput is what the creation flow supplies.
type NewChoreInput struct {
	HouseholdID   string
	Name          string
	Description   string
	IntervalType  recurrence.Interval
	IntervalValue int
	AssignedTo    *string
}

// NewChore validates the creation input and builds a chore whose initial due
// instant is seeded from the creation instant, using the same recurrence
// arithmetic that drives completion. The interval value is normalized to 1
// for daily and weekly chores, where it carries no meaning.
func NewChore(in NewChoreInput, now time.Time) (*model.Chore, error) {
	if !in.IntervalType.Valid() {
		return nil, fmt.Errorf("%w: unknown interval type %d", ErrInvalidInterval, int(in.IntervalType))
	}
	value := in.IntervalValue
	if !in.IntervalType.UsesValue() {
		value = 1
	}
	if value < 1 {
		return nil, fmt.Errorf("%w: interval value must be at least 1, got %d", ErrInvalidInterval, value)
	}

	now = now.UTC()
	return &model.Chore{
		ID:            uuid.NewString(),
		HouseholdID:   in.HouseholdID,
		Name:          in.Name,
		Description:   in.Description,
		IntervalType:  in.IntervalType,
		IntervalValue: value,
		DueAt:         recurrence.NextDueAt(in.IntervalType, value, now),
		AssignedTo:    in.AssignedTo,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
