package snapshot

import (
	"testing"
	"time"

	"github.com/mross/choreboard/internal/model"
)

func snap(names ...string) []model.Chore {
	chores := make([]model.Chore, len(names))
	for i, n := range names {
		chores[i] = model.Chore{ID: n, Name: n}
	}
	return chores
}

func TestPublishDelivers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("hh-1")
	defer sub.Cancel()

	bus.Publish("hh-1", snap("dishes"))

	select {
	case got := <-sub.Snapshots():
		if len(got) != 1 || got[0].ID != "dishes" {
			t.Errorf("got %v, want [dishes]", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestPublishIsolatesHouseholds(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("hh-1")
	defer sub.Cancel()

	bus.Publish("hh-2", snap("dishes"))

	select {
	case got := <-sub.Snapshots():
		t.Errorf("unexpected snapshot %v for another household", got)
	default:
	}
}

func TestSlowSubscriberGetsLatest(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("hh-1")
	defer sub.Cancel()

	bus.Publish("hh-1", snap("dishes"))
	bus.Publish("hh-1", snap("laundry"))
	bus.Publish("hh-1", snap("vacuum"))

	got := <-sub.Snapshots()
	if len(got) != 1 || got[0].ID != "vacuum" {
		t.Errorf("got %v, want the latest snapshot [vacuum]", got)
	}
	select {
	case stale := <-sub.Snapshots():
		t.Errorf("superseded snapshot %v still queued", stale)
	default:
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("hh-1")
	sub.Cancel()

	bus.Publish("hh-1", snap("dishes"))

	got, ok := <-sub.Snapshots()
	if ok {
		t.Errorf("snapshot %v delivered after cancel", got)
	}
}

func TestCancelTwice(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("hh-1")
	sub.Cancel()
	sub.Cancel()
}

func TestSubscriberCount(t *testing.T) {
	bus := NewBus()
	if n := bus.SubscriberCount("hh-1"); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
	a := bus.Subscribe("hh-1")
	b := bus.Subscribe("hh-1")
	if n := bus.SubscriberCount("hh-1"); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	a.Cancel()
	if n := bus.SubscriberCount("hh-1"); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	b.Cancel()
	if n := bus.SubscriberCount("hh-1"); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
