package availability

import (
	"github.com/unireserva/unireserva/pkg/remote"
	"github.com/unireserva/unireserva/pkg/timeslot"
)

// SlotStatus is the display status of one slot: free, or taken with the
// holder's name.
type SlotStatus struct {
	Taken  bool
	Holder string
}

// FreeSlots returns the calendar slots not claimed by any of the given
// reservations, preserving calendar order. An empty or nil reservation set
// yields the full calendar: absence of data means absence of reservations,
// never an error.
func FreeSlots(reservations []remote.Reservation, slots []timeslot.TimeSlot) []timeslot.TimeSlot {
	taken := make(map[string]struct{}, len(reservations))
	for _, r := range reservations {
		taken[r.TimeSlot] = struct{}{}
	}

	free := make([]timeslot.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if _, ok := taken[slot.Key()]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// StatusOf resolves the status of a single slot against the reservations of
// one room.
func StatusOf(reservations []remote.Reservation, slot timeslot.TimeSlot) SlotStatus {
	key := slot.Key()
	for _, r := range reservations {
		if r.TimeSlot == key {
			return SlotStatus{Taken: true, Holder: r.User}
		}
	}
	return SlotStatus{}
}
