package event_bus

const (
	// BookingConfirmedEvent is published after the remote authority has
	// confirmed a booking. Dependent occupancy views refetch on receipt.
	BookingConfirmedEvent EventType = "booking.confirmed"
	// BookingCancelledEvent is published after the remote authority has
	// confirmed a cancellation.
	BookingCancelledEvent EventType = "booking.cancelled"
)

type BookingConfirmed struct {
	RoomID   string
	Date     string
	TimeSlot string
	Holder   string
}

type BookingCancelled struct {
	RoomID   string
	Date     string
	TimeSlot string
	Holder   string
}
