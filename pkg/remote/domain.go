package remote

// Room is a bookable room. The authority identifies rooms by an opaque id and
// attaches no further attributes.
type Room struct {
	ID string `json:"id"`
}

// Reservation is one confirmed booking as reported by the authority. For a
// given (room, date) the authority guarantees at most one reservation per
// time slot; the client re-checks but never assumes that invariant locally.
type Reservation struct {
	User     string `json:"user"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// Occupancy maps a room id to its reservations for the date in view. It is
// rebuilt wholesale on every fetch, never patched incrementally.
type Occupancy map[string][]Reservation

// ConnectionState tracks the health of the link to the authority. It is
// re-evaluated on every remote call and never persisted.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
