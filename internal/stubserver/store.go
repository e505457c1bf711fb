package stubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/pkg/timeslot"
)

var (
	ErrUnknownRoom    = errors.New("Sala inexistente")
	ErrInvalidSlot    = errors.New("Horário inválido")
	ErrSlotConflict   = errors.New("Conflito de horário")
	ErrBookingMissing = errors.New("Reserva não encontrada")
)

// Reservation is one stored booking. The confirmation id is generated by the
// stub and returned to the caller; real clients ignore it.
type Reservation struct {
	ID       string `json:"id,omitempty"`
	User     string `json:"user"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// Store holds the stub authority's reservations per room and enforces the
// one-reservation-per-slot invariant under a single lock, exactly like the
// system it stands in for. When path is non-empty the full room map is
// written back to disk after every mutation.
type Store struct {
	mu    sync.Mutex
	rooms map[string][]Reservation
	path  string
}

func NewStore(path string, roomIDs ...string) *Store {
	s := &Store{
		rooms: make(map[string][]Reservation),
		path:  path,
	}
	for _, id := range roomIDs {
		s.rooms[id] = []Reservation{}
	}
	if path != "" {
		if err := s.load(); err != nil {
			log.Warnf("could not load reservation store from %s: %v", path, err)
		}
	}
	return s
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	loaded := make(map[string][]Reservation)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.rooms = loaded
	log.Infof("loaded reservation store from %s (%d rooms)", s.path, len(loaded))
	return nil
}

// saveLocked persists the room map. Callers must hold s.mu.
func (s *Store) saveLocked() {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(s.rooms, "", "  ")
	if err != nil {
		log.Errorf("failed to marshal reservation store: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Errorf("failed to persist reservation store to %s: %v", s.path, err)
	}
}

// RoomIDs lists all known rooms.
func (s *Store) RoomIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// All returns every reservation grouped by room, optionally filtered by date.
func (s *Store) All(date string) map[string][]Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string][]Reservation, len(s.rooms))
	for room, reservations := range s.rooms {
		filtered := make([]Reservation, 0, len(reservations))
		for _, r := range reservations {
			if date == "" || r.Date == date {
				filtered = append(filtered, r)
			}
		}
		result[room] = filtered
	}
	return result
}

// IsAvailable reports whether the slot is free for the room on the date.
func (s *Store) IsAvailable(roomID, date, slot string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, ok := s.rooms[roomID]
	if !ok {
		return false, ErrUnknownRoom
	}
	for _, r := range reservations {
		if r.Date == date && r.TimeSlot == slot {
			return false, nil
		}
	}
	return true, nil
}

// Book records a reservation, enforcing slot validity and uniqueness.
func (s *Store) Book(roomID, user, date, slot string) (Reservation, error) {
	if !timeslot.IsValidSlotKey(slot) {
		return Reservation{}, ErrInvalidSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, ok := s.rooms[roomID]
	if !ok {
		return Reservation{}, ErrUnknownRoom
	}
	for _, r := range reservations {
		if r.Date == date && r.TimeSlot == slot {
			return Reservation{}, ErrSlotConflict
		}
	}

	reservation := Reservation{
		ID:       uuid.NewString(),
		User:     user,
		Date:     date,
		TimeSlot: slot,
	}
	s.rooms[roomID] = append(reservations, reservation)
	s.saveLocked()

	log.Debugf("booked %s %s %s for %s", roomID, date, slot, user)
	return reservation, nil
}

// Cancel removes the reservation matching (user, date, slot) for the room.
func (s *Store) Cancel(roomID, user, date, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservations, ok := s.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	for i, r := range reservations {
		if r.User == user && r.Date == date && r.TimeSlot == slot {
			s.rooms[roomID] = append(reservations[:i], reservations[i+1:]...)
			s.saveLocked()
			log.Debugf("cancelled %s %s %s for %s", roomID, date, slot, user)
			return nil
		}
	}
	return ErrBookingMissing
}

func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, reservations := range s.rooms {
		total += len(reservations)
	}
	return fmt.Sprintf("%d rooms, %d reservations", len(s.rooms), total)
}
