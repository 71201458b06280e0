package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mross/choreboard/internal/chore"
	"github.com/mross/choreboard/internal/store"
)

// Scheduler watches for chores crossing their due instant and notifies the
// household's subscribed devices. Each chore is announced once per crossing:
// a tick compares overdue classification at the previous tick's instant
// against now, so a chore already overdue when the service starts is not
// re-announced.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	subs     *store.PushStore
	chores   *store.ChoreStore
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	lastRun  time.Time
}

func NewScheduler(svc *Service, subs *store.PushStore, chores *store.ChoreStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:  svc,
		subs:     subs,
		chores:   chores,
		interval: 60 * time.Second,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.lastRun = time.Now().UTC()
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()
	s.mu.Lock()
	since := s.lastRun
	s.lastRun = now
	s.mu.Unlock()

	householdIDs, err := s.subs.ListHouseholdIDs()
	if err != nil {
		s.logger.Error("push scheduler: list households", "error", err)
		return
	}

	for _, hid := range householdIDs {
		s.checkOverdue(ctx, hid, since, now)
	}
}

// checkOverdue notifies about chores that became overdue in (since, now].
func (s *Scheduler) checkOverdue(ctx context.Context, householdID string, since, now time.Time) {
	chores, err := s.chores.ListByHousehold(ctx, householdID)
	if err != nil {
		s.logger.Error("push scheduler: list chores", "household_id", householdID, "error", err)
		return
	}

	var crossed []string
	for _, c := range chores {
		if !chore.IsOverdue(c, since) && chore.IsOverdue(c, now) {
			crossed = append(crossed, c.Name)
		}
	}
	if len(crossed) == 0 {
		return
	}

	subs, err := s.subs.ListByHousehold(householdID)
	if err != nil {
		s.logger.Error("push scheduler: list subscriptions", "household_id", householdID, "error", err)
		return
	}

	payload := Payload{
		Title: "Chore overdue",
		Body:  overdueBody(crossed),
		URL:   "/chores",
		Tag:   "chore-overdue",
	}

	for i := range subs {
		sub := &subs[i]
		err := s.service.Send(sub, payload)
		if errors.Is(err, ErrExpired) {
			if err := s.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				s.logger.Error("push scheduler: prune expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			s.logger.Error("push scheduler: send", "endpoint", sub.Endpoint, "error", err)
		}
	}
}

func overdueBody(names []string) string {
	if len(names) == 1 {
		return fmt.Sprintf("%s is overdue", names[0])
	}
	return fmt.Sprintf("%s and %d more chores are overdue", names[0], len(names)-1)
}
