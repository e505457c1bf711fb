// Package stubserver is a development stand-in for the remote reservation
// authority. It speaks the authority's HTTP+JSON protocol so the gateway and
// its tests can run without the real system.
package stubserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	store  *Store
	router *mux.Router
}

func NewServer(store *Store) *Server {
	s := &Server{store: store}

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/salas", s.listReservations).Methods("GET")
	r.HandleFunc("/", s.dispatch).Methods("POST")
	r.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router = r

	return s
}

// Handler exposes the server as an http.Handler, for ListenAndServe and for
// httptest in client tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

type request struct {
	Type     string `json:"type"`
	RoomID   string `json:"room_id"`
	User     string `json:"user"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// dispatch routes the POST envelope by its type field, mirroring the
// authority's single-endpoint message protocol.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"type": "RES_ERROR", "error": err.Error()})
		return
	}

	switch req.Type {
	case "REQ_LIST":
		writeJSON(w, http.StatusOK, map[string]any{"type": "RES_LIST", "rooms": s.store.RoomIDs()})
	case "REQ_LIST_ALL":
		writeJSON(w, http.StatusOK, map[string]any{"type": "RES_LIST_ALL", "rooms": s.store.All("")})
	case "REQ_CHECK":
		s.check(w, req)
	case "REQ_BOOK":
		s.book(w, req)
	case "REQ_CANCEL":
		s.cancel(w, req)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"type": "RES_ERROR", "error": "Tipo de mensagem desconhecido"})
	}
}

func (s *Server) check(w http.ResponseWriter, req request) {
	available, err := s.store.IsAvailable(req.RoomID, req.Date, req.TimeSlot)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"type": "RES_ERROR", "error": err.Error()})
		return
	}
	status := "reservado"
	if available {
		status = "disponível"
	}
	writeJSON(w, http.StatusOK, map[string]string{"type": "RES_STATUS", "status": status})
}

func (s *Server) book(w http.ResponseWriter, req request) {
	reservation, err := s.store.Book(req.RoomID, req.User, req.Date, req.TimeSlot)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"type": "RES_ERROR", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"type":    "RES_CONFIRM",
		"room_id": req.RoomID,
		"id":      reservation.ID,
		"status":  "confirmed",
	})
}

func (s *Server) cancel(w http.ResponseWriter, req request) {
	if err := s.store.Cancel(req.RoomID, req.User, req.Date, req.TimeSlot); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"type": "RES_ERROR", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"type": "RES_CANCEL", "status": "cancelled"})
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.store.All(date)})
}
