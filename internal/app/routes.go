package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Rooms and schedule
	r.HandleFunc("/api/rooms", deps.BookingHandler.ListRooms).Methods("GET")
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.GetSchedule).Methods("GET")

	// Booking workflow
	r.HandleFunc("/api/booking/draft", deps.BookingHandler.PatchDraft).Methods("POST")
	r.HandleFunc("/api/booking/check", deps.BookingHandler.Check).Methods("POST")
	r.HandleFunc("/api/booking", deps.BookingHandler.Book).Methods("POST")
	r.HandleFunc("/api/booking", deps.BookingHandler.Cancel).Methods("DELETE")

	// Gateway status and authority configuration
	r.HandleFunc("/api/status", deps.BookingHandler.Status).Methods("GET")
	r.HandleFunc("/api/config/remote", deps.RemoteHandler.GetConfig).Methods("GET")
	r.HandleFunc("/api/config/remote", deps.RemoteHandler.SetConfig).Methods("PUT")
}
