package stubserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postEnvelope(t *testing.T, server *httptest.Server, envelope map[string]string) map[string]any {
	t.Helper()
	body, err := json.Marshal(envelope)
	require.NoError(t, err)

	resp, err := http.Post(server.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestServer_Dispatch(t *testing.T) {
	server := httptest.NewServer(NewServer(NewStore("", "sala-101", "sala-102")).Handler())
	defer server.Close()

	t.Run("should list rooms", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{"type": "REQ_LIST"})

		assert.Equal(t, "RES_LIST", response["type"])
		assert.ElementsMatch(t, []any{"sala-101", "sala-102"}, response["rooms"])
	})

	t.Run("should confirm a booking and then report the slot as taken", func(t *testing.T) {
		book := map[string]string{
			"type": "REQ_BOOK", "room_id": "sala-101", "user": "Ana",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		}
		response := postEnvelope(t, server, book)
		require.Equal(t, "confirmed", response["status"])
		assert.NotEmpty(t, response["id"])

		check := postEnvelope(t, server, map[string]string{
			"type": "REQ_CHECK", "room_id": "sala-101",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		})
		assert.Equal(t, "reservado", check["status"])
	})

	t.Run("should reject a conflicting booking", func(t *testing.T) {
		book := map[string]string{
			"type": "REQ_BOOK", "room_id": "sala-101", "user": "Bia",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		}
		response := postEnvelope(t, server, book)

		assert.Equal(t, "Conflito de horário", response["error"])
	})

	t.Run("should reject a slot outside the fixed calendar", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{
			"type": "REQ_BOOK", "room_id": "sala-101", "user": "Bia",
			"date": "2024-06-01", "time_slot": "23:00-23:30",
		})

		assert.Equal(t, "Horário inválido", response["error"])
	})

	t.Run("should reject an unknown room", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{
			"type": "REQ_CHECK", "room_id": "sala-999",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		})

		assert.Equal(t, "Sala inexistente", response["error"])
	})

	t.Run("should cancel an existing reservation", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{
			"type": "REQ_CANCEL", "room_id": "sala-101", "user": "Ana",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		})
		assert.Equal(t, "cancelled", response["status"])

		check := postEnvelope(t, server, map[string]string{
			"type": "REQ_CHECK", "room_id": "sala-101",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		})
		assert.Equal(t, "disponível", check["status"])
	})

	t.Run("should report a missing reservation on cancel", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{
			"type": "REQ_CANCEL", "room_id": "sala-101", "user": "Ana",
			"date": "2024-06-01", "time_slot": "08:00-09:30",
		})

		assert.Equal(t, "Reserva não encontrada", response["error"])
	})

	t.Run("should reject an unknown envelope type", func(t *testing.T) {
		response := postEnvelope(t, server, map[string]string{"type": "REQ_NOPE"})

		assert.Equal(t, "Tipo de mensagem desconhecido", response["error"])
	})
}

func TestServer_ListReservations(t *testing.T) {
	store := NewStore("", "sala-101")
	_, err := store.Book("sala-101", "Ana", "2024-06-01", "08:00-09:30")
	require.NoError(t, err)
	_, err = store.Book("sala-101", "Bia", "2024-06-02", "08:00-09:30")
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(store).Handler())
	defer server.Close()

	t.Run("should filter reservations by date", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/salas?date=2024-06-01")
		require.NoError(t, err)
		defer resp.Body.Close()

		var decoded struct {
			Rooms map[string][]Reservation `json:"rooms"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		require.Len(t, decoded.Rooms["sala-101"], 1)
		assert.Equal(t, "Ana", decoded.Rooms["sala-101"][0].User)
	})

	t.Run("should return all reservations without a date filter", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/salas")
		require.NoError(t, err)
		defer resp.Body.Close()

		var decoded struct {
			Rooms map[string][]Reservation `json:"rooms"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		assert.Len(t, decoded.Rooms["sala-101"], 2)
	})
}

func TestStore_Persistence(t *testing.T) {
	t.Run("should reload reservations from the snapshot file", func(t *testing.T) {
		path := t.TempDir() + "/rooms.json"

		first := NewStore(path, "sala-101")
		_, err := first.Book("sala-101", "Ana", "2024-06-01", "08:00-09:30")
		require.NoError(t, err)

		second := NewStore(path)
		available, err := second.IsAvailable("sala-101", "2024-06-01", "08:00-09:30")
		require.NoError(t, err)
		assert.False(t, available)
	})
}
