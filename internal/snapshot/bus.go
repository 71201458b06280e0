// Package snapshot fans chore-list snapshots out to in-process subscribers.
//
// Every publish carries a complete replacement snapshot, never a diff. A
// subscriber that falls behind sees snapshots coalesce latest-wins: each
// snapshot is self-consistent, so skipping a superseded one is always safe.
package snapshot

import (
	"sync"

	"github.com/mross/choreboard/internal/model"
)

// Bus routes household chore snapshots to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription is a handle to one subscriber's snapshot stream.
type Subscription struct {
	bus         *Bus
	householdID string
	ch          chan []model.Chore
	cancelled   bool // guarded by bus.mu
}

// Snapshots is the stream of full-replacement snapshots. It is closed by
// Cancel.
func (s *Subscription) Snapshots() <-chan []model.Chore {
	return s.ch
}

// Subscribe registers interest in a household's chore collection.
func (b *Bus) Subscribe(householdID string) *Subscription {
	sub := &Subscription{
		bus:         b,
		householdID: householdID,
		ch:          make(chan []model.Chore, 1),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[householdID]
	if m == nil {
		m = make(map[*Subscription]struct{})
		b.subs[householdID] = m
	}
	m[sub] = struct{}{}
	return sub
}

// Publish delivers a snapshot to every subscriber of the household. A
// subscriber that has not drained its previous snapshot gets the new one in
// its place; snapshots replace, they do not queue.
func (b *Bus) Publish(householdID string, chores []model.Chore) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[householdID] {
		select {
		case sub.ch <- chores:
		default:
			// Discard the undelivered snapshot. The buffer has room again
			// because all sends happen under the bus lock.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- chores
		}
	}
}

// Cancel stops delivery and closes the snapshot channel. It is synchronous:
// once Cancel returns, no further snapshot will arrive. Cancelling twice is
// a no-op.
func (s *Subscription) Cancel() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	m := b.subs[s.householdID]
	delete(m, s)
	if len(m) == 0 {
		delete(b.subs, s.householdID)
	}
	close(s.ch)
}

// SubscriberCount returns the number of active subscriptions for a household.
func (b *Bus) SubscriberCount(householdID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[householdID])
}
