package timeslot

import (
	"errors"
	"regexp"
	"strings"
)

// TimeSlot is one of the eight fixed, non-overlapping windows that compose a
// bookable day. The domain is closed: slots exist only as listed in slotKeys,
// identical for every room and date.
type TimeSlot struct {
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

var ErrUnknownSlot = errors.New("unknown time slot")

var slotKeys = []string{
	"08:00-09:30",
	"09:45-11:15",
	"11:30-13:00",
	"13:15-14:45",
	"15:00-16:30",
	"16:45-18:15",
	"19:00-20:30",
	"20:45-22:15",
}

var dateRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Key returns the canonical "HH:MM-HH:MM" identifier of the slot.
func (s TimeSlot) Key() string {
	return s.StartTime + "-" + s.EndTime
}

// Format renders a slot for display. It is stable and round-trips with Parse.
func Format(s TimeSlot) string {
	return s.Key()
}

// Slots returns the full-day slot domain in calendar order. The returned
// slice is a fresh copy on every call, so callers may not mutate the domain.
func Slots() []TimeSlot {
	out := make([]TimeSlot, 0, len(slotKeys))
	for _, key := range slotKeys {
		start, end, _ := strings.Cut(key, "-")
		out = append(out, TimeSlot{StartTime: start, EndTime: end})
	}
	return out
}

// Parse resolves a canonical key back to its TimeSlot. Keys outside the
// fixed domain are rejected with ErrUnknownSlot.
func Parse(key string) (TimeSlot, error) {
	for _, s := range Slots() {
		if s.Key() == key {
			return s, nil
		}
	}
	return TimeSlot{}, ErrUnknownSlot
}

// IsValidSlotKey reports whether key belongs to the fixed slot domain.
func IsValidSlotKey(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// IsValidDate reports whether s is a strictly zero-padded "YYYY-MM-DD"
// calendar date string. Dates are validated before any remote call.
func IsValidDate(s string) bool {
	return dateRegexp.MatchString(s)
}
