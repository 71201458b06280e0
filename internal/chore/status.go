package chore

import (
	"time"

	"github.com/mross/choreboard/internal/model"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// IsOverdue reports whether the chore's due instant has passed. Strict
// comparison: a chore is not overdue at the exact instant now == DueAt.
//
// Overdue is always derived, never stored. A chore whose undo just restored
// an earlier due instant is classified against that instant like any other.
func IsOverdue(c model.Chore, now time.Time) bool {
	return now.After(c.DueAt)
}

// StatusFor derives a display status. Overdue wins over completed: a chore
// that was completed but whose next due instant has already passed needs
// doing again.
func StatusFor(c model.Chore, now time.Time) Status {
	if IsOverdue(c, now) {
		return StatusOverdue
	}
	if c.LastCompletion != nil {
		return StatusCompleted
	}
	return StatusPending
}
