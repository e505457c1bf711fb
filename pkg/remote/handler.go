package remote

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type ConfigDTO struct {
	BaseURL    string `json:"baseUrl"`
	Connection string `json:"connection"`
}

// Handler lets the operator inspect and redirect the authority address at
// runtime.
type Handler struct {
	holder *Holder
}

func NewHandler(holder *Holder) *Handler {
	return &Handler{holder: holder}
}

func (handler *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	client := handler.holder.Current()
	dto := ConfigDTO{BaseURL: client.BaseURL(), Connection: client.ConnectionState().String()}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	log.Debug("Redirecting reservation authority")
	w.Header().Set("Content-Type", "application/json")

	var dto ConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := handler.holder.Swap(dto.BaseURL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	client := handler.holder.Current()
	result := ConfigDTO{BaseURL: client.BaseURL(), Connection: client.ConnectionState().String()}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
