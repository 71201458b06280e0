package chore

import (
	"cmp"
	"slices"
	"time"

	"github.com/mross/choreboard/internal/model"
)

// SortForDisplay returns the chores in display order: all overdue chores
// first, then within each group ascending by due instant, with ties broken by
// id so the order is identical across re-renders and across devices. The
// input slice is not modified.
func SortForDisplay(chores []model.Chore, now time.Time) []model.Chore {
	out := slices.Clone(chores)
	slices.SortStableFunc(out, func(a, b model.Chore) int {
		ao, bo := IsOverdue(a, now), IsOverdue(b, now)
		if ao != bo {
			if ao {
				return -1
			}
			return 1
		}
		if c := a.DueAt.Compare(b.DueAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
