package schedule

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/internal/event_bus"
	"github.com/unireserva/unireserva/internal/utils"
	"github.com/unireserva/unireserva/pkg/remote"
	"github.com/unireserva/unireserva/pkg/timeslot"
)

// Service is the occupancy view over the authority's snapshot: it tracks the
// date currently in view, replaces (never merges) the snapshot on every
// fetch, and refetches whenever the coordinator publishes a confirmed
// mutation. Responses are tagged with the date they were requested for and
// dropped if the selection has moved on by the time they arrive, so stale
// answers can never masquerade as current data.
type Service struct {
	clientFn func() remote.Client
	clock    utils.Clock

	mu       sync.RWMutex
	date     string
	snapshot remote.Occupancy
	fetchErr error
}

func NewService(clientFn func() remote.Client, clock utils.Clock, bus *event_bus.EventBus) *Service {
	s := &Service{
		clientFn: clientFn,
		clock:    clock,
		snapshot: remote.Occupancy{},
	}

	refetch := func(e event_bus.Event) error {
		if err := s.Refresh(e.Context()); err != nil {
			return fmt.Errorf("schedule refetch after %s: %w", e.Type, err)
		}
		return nil
	}
	bus.Subscribe(event_bus.BookingConfirmedEvent, refetch)
	bus.Subscribe(event_bus.BookingCancelledEvent, refetch)

	return s
}

// Date returns the date currently in view, defaulting to today.
func (s *Service) Date() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.date == "" {
		return utils.Today(s.clock)
	}
	return s.date
}

// SetDate switches the view to the given date and fetches its occupancy.
func (s *Service) SetDate(ctx context.Context, date string) error {
	if !timeslot.IsValidDate(date) {
		return fmt.Errorf("date %q is not a valid YYYY-MM-DD date", date)
	}

	s.mu.Lock()
	s.date = date
	s.mu.Unlock()

	return s.fetch(ctx, date)
}

// Refresh refetches occupancy for the date currently in view.
func (s *Service) Refresh(ctx context.Context) error {
	return s.fetch(ctx, s.Date())
}

// fetch retrieves occupancy for date and applies it only if date is still the
// current selection when the response arrives. On failure the snapshot for
// the affected date is reset to empty rather than silently keeping possibly
// stale data labelled as current.
func (s *Service) fetch(ctx context.Context, date string) error {
	occupancy, err := s.clientFn().FetchOccupancy(ctx, date)

	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.currentDateLocked(); current != date {
		log.Debugf("dropping occupancy response for %s, selection moved to %s", date, current)
		return nil
	}

	if err != nil {
		log.Errorf("failed to fetch occupancy for %s: %v", date, err)
		s.snapshot = remote.Occupancy{}
		s.fetchErr = err
		return err
	}

	s.snapshot = occupancy
	s.fetchErr = nil
	return nil
}

func (s *Service) currentDateLocked() string {
	if s.date == "" {
		return utils.Today(s.clock)
	}
	return s.date
}

// Snapshot returns the date in view, its last-fetched occupancy and the
// error of the last fetch, if any.
func (s *Service) Snapshot() (string, remote.Occupancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occupancy := make(remote.Occupancy, len(s.snapshot))
	for roomID, reservations := range s.snapshot {
		copied := make([]remote.Reservation, len(reservations))
		copy(copied, reservations)
		occupancy[roomID] = copied
	}
	return s.currentDateLocked(), occupancy, s.fetchErr
}

// Reservations returns the snapshot's reservations for one room. An unknown
// room yields an empty set.
func (s *Service) Reservations(roomID string) []remote.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservations := make([]remote.Reservation, len(s.snapshot[roomID]))
	copy(reservations, s.snapshot[roomID])
	return reservations
}
