package booking

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/internal/event_bus"
	"github.com/unireserva/unireserva/pkg/remote"
	"github.com/unireserva/unireserva/pkg/timeslot"
)

// State is the coordinator's position in the booking workflow.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateBooking
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateBooking:
		return "booking"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Draft is the user's in-progress booking selection. It is consumed exactly
// once by a successful submission.
type Draft struct {
	RoomID   string
	Date     string
	TimeSlot string
	Holder   string
}

// ValidationError marks local input problems caught before any remote call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid booking input: %s", e.Reason)
}

// Coordinator drives the booking workflow: draft selection, advisory
// availability checks, submission, and the refresh signal dependent views
// observe after a confirmed mutation. The remote client is resolved through
// clientFn on every call so that runtime redirection to another authority
// takes effect without touching in-flight requests.
type Coordinator struct {
	clientFn func() remote.Client
	bus      *event_bus.EventBus

	mu           sync.Mutex
	draft        Draft
	state        State
	refreshCount uint64
	lastMessage  string
}

func NewCoordinator(clientFn func() remote.Client, bus *event_bus.EventBus) *Coordinator {
	return &Coordinator{
		clientFn: clientFn,
		bus:      bus,
		state:    StateIdle,
	}
}

// SelectRoom sets the draft's room. Changing to a different room clears the
// slot selection: slot validity is scoped to a specific (room, date)
// occupancy snapshot, so a slot carried across a room change would be stale.
func (c *Coordinator) SelectRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if roomID != c.draft.RoomID {
		c.draft.TimeSlot = ""
	}
	c.draft.RoomID = roomID
}

// SelectDate sets the draft's date, rejecting anything that is not a strict
// zero-padded calendar date. Changing to a different date clears the slot.
func (c *Coordinator) SelectDate(date string) error {
	if !timeslot.IsValidDate(date) {
		return &ValidationError{Reason: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", date)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if date != c.draft.Date {
		c.draft.TimeSlot = ""
	}
	c.draft.Date = date
	return nil
}

// SelectSlot sets the draft's time slot. Room and date must be chosen first
// and the key must belong to the fixed slot domain.
func (c *Coordinator) SelectSlot(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.RoomID == "" || c.draft.Date == "" {
		return &ValidationError{Reason: "select a room and a date before choosing a slot"}
	}
	if !timeslot.IsValidSlotKey(key) {
		return &ValidationError{Reason: fmt.Sprintf("slot %q is not part of the daily calendar", key)}
	}
	c.draft.TimeSlot = key
	return nil
}

func (c *Coordinator) SetHolder(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Holder = name
}

// Draft returns a snapshot of the current selection.
func (c *Coordinator) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RefreshCount is the monotonically increasing signal counter; it ticks only
// when the authority has confirmed a mutation.
func (c *Coordinator) RefreshCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshCount
}

// Message returns the human-readable outcome of the last check or mutation.
func (c *Coordinator) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessage
}

func (c *Coordinator) validateDraft(d Draft, needHolder bool) error {
	if d.RoomID == "" || d.Date == "" || d.TimeSlot == "" {
		return &ValidationError{Reason: "room, date and time slot must all be selected"}
	}
	if needHolder && d.Holder == "" {
		return &ValidationError{Reason: "holder name is required"}
	}
	if !timeslot.IsValidDate(d.Date) {
		return &ValidationError{Reason: fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", d.Date)}
	}
	if !timeslot.IsValidSlotKey(d.TimeSlot) {
		return &ValidationError{Reason: fmt.Sprintf("slot %q is not part of the daily calendar", d.TimeSlot)}
	}
	return nil
}

// Check asks the authority whether the drafted slot is currently free. The
// answer is advisory: nothing is mutated and the authority re-arbitrates at
// booking time. An incomplete draft is rejected synchronously without any
// state transition or network traffic.
func (c *Coordinator) Check(ctx context.Context) (bool, error) {
	c.mu.Lock()
	draft := c.draft
	if err := c.validateDraft(draft, false); err != nil {
		c.mu.Unlock()
		return false, err
	}
	c.state = StateChecking
	c.mu.Unlock()

	available, err := c.clientFn().CheckAvailability(ctx, draft.RoomID, draft.Date, draft.TimeSlot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	if err != nil {
		c.lastMessage = fmt.Sprintf("availability check failed: %v", err)
		return false, err
	}
	if available {
		c.lastMessage = fmt.Sprintf("room %s is available at %s on %s", draft.RoomID, draft.TimeSlot, draft.Date)
	} else {
		c.lastMessage = fmt.Sprintf("room %s is taken at %s on %s", draft.RoomID, draft.TimeSlot, draft.Date)
	}
	return available, nil
}

// Book submits the draft to the authority. On confirmation the draft is
// cleared, the refresh counter is incremented and a BookingConfirmed event is
// published, strictly after the confirmation was received. On rejection or
// transport failure the whole draft is preserved so the user can retry.
func (c *Coordinator) Book(ctx context.Context) error {
	c.mu.Lock()
	draft := c.draft
	if err := c.validateDraft(draft, true); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateBooking
	c.mu.Unlock()

	err := c.clientFn().SubmitBooking(ctx, draft.RoomID, draft.Date, draft.TimeSlot, draft.Holder)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
		c.lastMessage = fmt.Sprintf("booking failed: %v", err)
		c.mu.Unlock()
		return err
	}
	c.state = StateSucceeded
	c.draft = Draft{}
	c.refreshCount++
	c.lastMessage = fmt.Sprintf("reservation confirmed for room %s", draft.RoomID)
	c.mu.Unlock()

	log.Infof("booking confirmed: room=%s date=%s slot=%s holder=%s", draft.RoomID, draft.Date, draft.TimeSlot, draft.Holder)
	if err := c.bus.Publish(event_bus.NewEvent(ctx, event_bus.BookingConfirmedEvent, event_bus.BookingConfirmed{
		RoomID:   draft.RoomID,
		Date:     draft.Date,
		TimeSlot: draft.TimeSlot,
		Holder:   draft.Holder,
	})); err != nil {
		log.Errorf("failed to notify booking subscribers: %v", err)
	}
	return nil
}

// Cancel asks the authority to remove the reservation described by the
// draft. It follows the same state machine as Book: the draft is preserved
// on failure and cleared after the authority confirms the cancellation.
func (c *Coordinator) Cancel(ctx context.Context) error {
	c.mu.Lock()
	draft := c.draft
	if err := c.validateDraft(draft, true); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateBooking
	c.mu.Unlock()

	err := c.clientFn().CancelBooking(ctx, draft.RoomID, draft.Date, draft.TimeSlot, draft.Holder)

	c.mu.Lock()
	if err != nil {
		c.state = StateFailed
		c.lastMessage = fmt.Sprintf("cancellation failed: %v", err)
		c.mu.Unlock()
		return err
	}
	c.state = StateSucceeded
	c.draft = Draft{}
	c.refreshCount++
	c.lastMessage = fmt.Sprintf("reservation cancelled for room %s", draft.RoomID)
	c.mu.Unlock()

	log.Infof("booking cancelled: room=%s date=%s slot=%s holder=%s", draft.RoomID, draft.Date, draft.TimeSlot, draft.Holder)
	if err := c.bus.Publish(event_bus.NewEvent(ctx, event_bus.BookingCancelledEvent, event_bus.BookingCancelled{
		RoomID:   draft.RoomID,
		Date:     draft.Date,
		TimeSlot: draft.TimeSlot,
		Holder:   draft.Holder,
	})); err != nil {
		log.Errorf("failed to notify cancellation subscribers: %v", err)
	}
	return nil
}
