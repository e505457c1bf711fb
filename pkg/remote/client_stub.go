package remote

import (
	"context"
	"sync"
)

// ClientStub is an in-memory Client used by service tests. Availability and
// occupancy answers are derived from the reservations loaded into the stub;
// per-method errors can be injected to exercise failure paths.
type ClientStub struct {
	mu           sync.RWMutex
	rooms        []Room
	reservations map[string][]Reservation // roomID -> reservations, all dates
	state        ConnectionState

	listRoomsErr         error
	fetchOccupancyErr    error
	checkAvailabilityErr error
	submitBookingErr     error
	cancelBookingErr     error

	// FetchOccupancyHook, when set, runs during FetchOccupancy before the
	// snapshot is assembled. Tests use it to change the caller's selection
	// while a fetch is outstanding.
	FetchOccupancyHook func(date string)
}

func NewClientStub() *ClientStub {
	return &ClientStub{
		reservations: make(map[string][]Reservation),
		state:        StateConnected,
	}
}

func (c *ClientStub) SetRooms(rooms ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = c.rooms[:0]
	for _, id := range rooms {
		c.rooms = append(c.rooms, Room{ID: id})
	}
}

func (c *ClientStub) AddReservation(roomID string, r Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservations[roomID] = append(c.reservations[roomID], r)
}

func (c *ClientStub) SetState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *ClientStub) FailListRooms(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listRoomsErr = err
}

func (c *ClientStub) FailFetchOccupancy(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchOccupancyErr = err
}

func (c *ClientStub) FailCheckAvailability(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkAvailabilityErr = err
}

func (c *ClientStub) FailSubmitBooking(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitBookingErr = err
}

func (c *ClientStub) FailCancelBooking(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelBookingErr = err
}

func (c *ClientStub) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = nil
	c.reservations = make(map[string][]Reservation)
	c.state = StateConnected
	c.listRoomsErr = nil
	c.fetchOccupancyErr = nil
	c.checkAvailabilityErr = nil
	c.submitBookingErr = nil
	c.cancelBookingErr = nil
	c.FetchOccupancyHook = nil
}

func (c *ClientStub) ListRooms(ctx context.Context) ([]Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.listRoomsErr != nil {
		return nil, c.listRoomsErr
	}
	result := make([]Room, len(c.rooms))
	copy(result, c.rooms)
	return result, nil
}

func (c *ClientStub) FetchOccupancy(ctx context.Context, date string) (Occupancy, error) {
	c.mu.RLock()
	hook := c.FetchOccupancyHook
	c.mu.RUnlock()
	if hook != nil {
		hook(date)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fetchOccupancyErr != nil {
		return nil, c.fetchOccupancyErr
	}

	occupancy := make(Occupancy)
	for _, room := range c.rooms {
		occupancy[room.ID] = []Reservation{}
	}
	for roomID, reservations := range c.reservations {
		filtered := occupancy[roomID]
		for _, r := range reservations {
			if r.Date == date {
				filtered = append(filtered, r)
			}
		}
		occupancy[roomID] = filtered
	}
	return occupancy, nil
}

func (c *ClientStub) CheckAvailability(ctx context.Context, roomID, date, slot string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.checkAvailabilityErr != nil {
		return false, c.checkAvailabilityErr
	}
	for _, r := range c.reservations[roomID] {
		if r.Date == date && r.TimeSlot == slot {
			return false, nil
		}
	}
	return true, nil
}

func (c *ClientStub) SubmitBooking(ctx context.Context, roomID, date, slot, holder string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitBookingErr != nil {
		return c.submitBookingErr
	}
	for _, r := range c.reservations[roomID] {
		if r.Date == date && r.TimeSlot == slot {
			return &RejectedError{Reason: "Conflito de horário"}
		}
	}
	c.reservations[roomID] = append(c.reservations[roomID], Reservation{
		User:     holder,
		Date:     date,
		TimeSlot: slot,
	})
	return nil
}

func (c *ClientStub) CancelBooking(ctx context.Context, roomID, date, slot, holder string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelBookingErr != nil {
		return c.cancelBookingErr
	}
	reservations := c.reservations[roomID]
	for i, r := range reservations {
		if r.Date == date && r.TimeSlot == slot && r.User == holder {
			c.reservations[roomID] = append(reservations[:i], reservations[i+1:]...)
			return nil
		}
	}
	return &RejectedError{Reason: "Reserva não encontrada"}
}

func (c *ClientStub) ConnectionState() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *ClientStub) BaseURL() string {
	return "stub://reservation-authority"
}
