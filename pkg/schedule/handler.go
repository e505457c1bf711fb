package schedule

import (
	"encoding/json"
	"net/http"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/pkg/availability"
	"github.com/unireserva/unireserva/pkg/timeslot"
)

type SlotDTO struct {
	TimeSlot string `json:"timeSlot"`
	Status   string `json:"status"`
	Holder   string `json:"holder,omitempty"`
}

type RoomScheduleDTO struct {
	RoomID    string    `json:"roomId"`
	Slots     []SlotDTO `json:"slots"`
	FreeSlots []string  `json:"freeSlots"`
}

type ScheduleDTO struct {
	Date  string            `json:"date"`
	Rooms []RoomScheduleDTO `json:"rooms"`
	Error string            `json:"error,omitempty"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSchedule renders the per-room slot grid for the requested date. Without
// a date parameter the current selection (defaulting to today) is used.
func (handler *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if date := r.URL.Query().Get("date"); date != "" {
		if err := handler.service.SetDate(r.Context(), date); err != nil {
			if !timeslot.IsValidDate(date) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// Fetch failures degrade to an empty grid below; the error is
			// reported in the payload instead of failing the whole view.
			log.Debugf("schedule fetch degraded: %v", err)
		}
	} else if err := handler.service.Refresh(r.Context()); err != nil {
		log.Debugf("schedule refresh degraded: %v", err)
	}

	date, occupancy, fetchErr := handler.service.Snapshot()

	dto := ScheduleDTO{Date: date, Rooms: make([]RoomScheduleDTO, 0, len(occupancy))}
	if fetchErr != nil {
		dto.Error = fetchErr.Error()
	}
	roomIDs := make([]string, 0, len(occupancy))
	for roomID := range occupancy {
		roomIDs = append(roomIDs, roomID)
	}
	sort.Strings(roomIDs)

	for _, roomID := range roomIDs {
		reservations := occupancy[roomID]
		room := RoomScheduleDTO{RoomID: roomID, Slots: make([]SlotDTO, 0, len(timeslot.Slots()))}
		for _, slot := range timeslot.Slots() {
			status := availability.StatusOf(reservations, slot)
			slotDTO := SlotDTO{TimeSlot: timeslot.Format(slot), Status: "free"}
			if status.Taken {
				slotDTO.Status = "taken"
				slotDTO.Holder = status.Holder
			}
			room.Slots = append(room.Slots, slotDTO)
		}
		for _, slot := range availability.FreeSlots(reservations, timeslot.Slots()) {
			room.FreeSlots = append(room.FreeSlots, timeslot.Format(slot))
		}
		dto.Rooms = append(dto.Rooms, room)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
