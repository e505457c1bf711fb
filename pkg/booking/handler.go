package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/unireserva/unireserva/pkg/remote"
)

type DraftDTO struct {
	RoomID   string `json:"roomId"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Holder   string `json:"holder"`
}

// DraftPatchDTO updates individual draft fields; absent fields are left
// untouched.
type DraftPatchDTO struct {
	RoomID   *string `json:"roomId,omitempty"`
	Date     *string `json:"date,omitempty"`
	TimeSlot *string `json:"timeSlot,omitempty"`
	Holder   *string `json:"holder,omitempty"`
}

type CheckResultDTO struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type BookingResultDTO struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	RefreshCount uint64 `json:"refreshCount"`
}

type StatusDTO struct {
	Connection   string   `json:"connection"`
	State        string   `json:"state"`
	RefreshCount uint64   `json:"refreshCount"`
	Message      string   `json:"message,omitempty"`
	Draft        DraftDTO `json:"draft"`
}

type Handler struct {
	coordinator *Coordinator
	clientFn    func() remote.Client
}

func NewHandler(coordinator *Coordinator, clientFn func() remote.Client) *Handler {
	return &Handler{coordinator: coordinator, clientFn: clientFn}
}

func draftToDTO(d Draft) DraftDTO {
	return DraftDTO{
		RoomID:   d.RoomID,
		Date:     d.Date,
		TimeSlot: d.TimeSlot,
		Holder:   d.Holder,
	}
}

// writeError maps the coordinator's error taxonomy onto HTTP statuses:
// validation problems are the caller's fault, rejections are conflicts, and
// authority failures are reported as a bad gateway.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var rejectedErr *remote.RejectedError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &rejectedErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, remote.ErrUnreachable), errors.Is(err, remote.ErrMalformed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListRooms lists the rooms known to the authority.
func (handler *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rooms, err := handler.clientFn().ListRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// PatchDraft applies partial updates to the booking draft.
func (handler *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating booking draft")
	w.Header().Set("Content-Type", "application/json")

	var patch DraftPatchDTO
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if patch.RoomID != nil {
		handler.coordinator.SelectRoom(*patch.RoomID)
	}
	if patch.Date != nil {
		if err := handler.coordinator.SelectDate(*patch.Date); err != nil {
			writeError(w, err)
			return
		}
	}
	if patch.TimeSlot != nil {
		if err := handler.coordinator.SelectSlot(*patch.TimeSlot); err != nil {
			writeError(w, err)
			return
		}
	}
	if patch.Holder != nil {
		handler.coordinator.SetHolder(*patch.Holder)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(draftToDTO(handler.coordinator.Draft())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Check runs the advisory availability pre-check on the current draft.
func (handler *Handler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	available, err := handler.coordinator.Check(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	result := CheckResultDTO{Available: available, Message: handler.coordinator.Message()}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Book submits the current draft to the authority.
func (handler *Handler) Book(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := handler.coordinator.Book(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	result := BookingResultDTO{
		Status:       "confirmed",
		Message:      handler.coordinator.Message(),
		RefreshCount: handler.coordinator.RefreshCount(),
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Cancel removes the reservation described by the current draft.
func (handler *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := handler.coordinator.Cancel(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	result := BookingResultDTO{
		Status:       "cancelled",
		Message:      handler.coordinator.Message(),
		RefreshCount: handler.coordinator.RefreshCount(),
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Status reports the connection state, workflow state, refresh counter and
// the current draft.
func (handler *Handler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := StatusDTO{
		Connection:   handler.clientFn().ConnectionState().String(),
		State:        handler.coordinator.State().String(),
		RefreshCount: handler.coordinator.RefreshCount(),
		Message:      handler.coordinator.Message(),
		Draft:        draftToDTO(handler.coordinator.Draft()),
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
