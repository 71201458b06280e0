package model

import (
	"time"

	"github.com/mross/choreboard/internal/recurrence"
)

// Chore is one recurring task owned by a household. DueAt is always a
// concrete instant; overdue is derived from it, never stored.
type Chore struct {
	ID            string              `json:"id"`
	HouseholdID   string              `json:"household_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	IntervalType  recurrence.Interval `json:"interval_type"`
	IntervalValue int                 `json:"interval_value"`
	DueAt         time.Time           `json:"due_at"`
	AssignedTo    *string             `json:"assigned_to"`

	// LastCompletion is present exactly while an undo is possible. A second
	// completion replaces it; undo clears it.
	LastCompletion *CompletionRecord `json:"last_completion,omitempty"`

	// Version is the optimistic concurrency token. The store increments it on
	// every accepted mutation and rejects writes whose expected version is
	// stale.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletionRecord is the single retained undo state for a chore's most
// recent completion.
type CompletionRecord struct {
	CompletedAt   time.Time `json:"completed_at"`
	CompletedBy   string    `json:"completed_by"`
	PreviousDueAt time.Time `json:"previous_due_at"`
}
