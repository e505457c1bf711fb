package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const availableStatus = "disponível"

// Client is the typed contract to the reservation authority. SubmitBooking
// and CancelBooking are the only mutating operations; the authority remains
// the sole arbiter of slot uniqueness.
type Client interface {
	ListRooms(ctx context.Context) ([]Room, error)                                      // POST / {type: REQ_LIST}
	FetchOccupancy(ctx context.Context, date string) (Occupancy, error)                 // GET /salas?date=
	CheckAvailability(ctx context.Context, roomID, date, slot string) (bool, error)     // POST / {type: REQ_CHECK}
	SubmitBooking(ctx context.Context, roomID, date, slot, holder string) error         // POST / {type: REQ_BOOK}
	CancelBooking(ctx context.Context, roomID, date, slot, holder string) error         // POST / {type: REQ_CANCEL}
	ConnectionState() ConnectionState
	BaseURL() string
}

// HTTPClient talks HTTP+JSON to a single authority instance. The base URL is
// fixed at construction; redirecting the gateway to a different authority
// means constructing a new client, so in-flight calls always resolve against
// the address captured at call start.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	state ConnectionState
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		state:      StateConnecting,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) ConnectionState() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *HTTPClient) setState(s ConnectionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// roundTrip performs one request against the authority and decodes the JSON
// body into out. Connection state is set to connecting while the call is in
// flight, connected on any successful response, and error on transport
// failure. A body that fails to decode leaves the state connected and
// surfaces ErrMalformed to the caller.
func (c *HTTPClient) roundTrip(req *http.Request, out any) error {
	c.setState(StateConnecting)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("request to reservation authority failed: %v", err)
		c.setState(StateError)
		return ErrUnreachable
	}
	defer resp.Body.Close()

	c.setState(StateConnected)

	if resp.StatusCode != http.StatusOK {
		log.Errorf("reservation authority returned non-OK status: %d", resp.StatusCode)
		return ErrMalformed
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("failed to decode authority response: %v", err)
		return ErrMalformed
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.roundTrip(req, out)
}

// ListRooms retrieves the full room catalogue from the authority.
func (c *HTTPClient) ListRooms(ctx context.Context) ([]Room, error) {
	var response struct {
		Rooms []string `json:"rooms"`
	}
	err := c.post(ctx, map[string]string{"type": "REQ_LIST"}, &response)
	if err != nil {
		return nil, err
	}
	if response.Rooms == nil {
		return nil, ErrMalformed
	}

	rooms := make([]Room, 0, len(response.Rooms))
	for _, id := range response.Rooms {
		rooms = append(rooms, Room{ID: id})
	}
	return rooms, nil
}

// FetchOccupancy retrieves the reservation snapshot for every room on the
// given date. It is read-only and never alters bookings.
func (c *HTTPClient) FetchOccupancy(ctx context.Context, date string) (Occupancy, error) {
	endpoint := c.baseURL + "/salas?date=" + url.QueryEscape(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Rooms Occupancy `json:"rooms"`
	}
	if err := c.roundTrip(req, &response); err != nil {
		return nil, err
	}
	if response.Rooms == nil {
		return nil, ErrMalformed
	}
	return response.Rooms, nil
}

// CheckAvailability asks the authority whether the slot is free. The answer
// is advisory; booking time is when the authority actually enforces it.
func (c *HTTPClient) CheckAvailability(ctx context.Context, roomID, date, slot string) (bool, error) {
	var response struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	err := c.post(ctx, map[string]string{
		"type":      "REQ_CHECK",
		"room_id":   roomID,
		"date":      date,
		"time_slot": slot,
	}, &response)
	if err != nil {
		return false, err
	}
	if response.Error != "" {
		return false, &RejectedError{Reason: response.Error}
	}
	if response.Status == "" {
		return false, ErrMalformed
	}
	return response.Status == availableStatus, nil
}

// SubmitBooking asks the authority to record the reservation. The client
// reports exactly what the authority returns and never assumes success
// locally.
func (c *HTTPClient) SubmitBooking(ctx context.Context, roomID, date, slot, holder string) error {
	var response struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	err := c.post(ctx, map[string]string{
		"type":      "REQ_BOOK",
		"room_id":   roomID,
		"user":      holder,
		"date":      date,
		"time_slot": slot,
	}, &response)
	if err != nil {
		return err
	}
	if response.Error != "" {
		return &RejectedError{Reason: response.Error}
	}
	if response.Status != "confirmed" {
		return ErrMalformed
	}
	return nil
}

// CancelBooking asks the authority to remove a reservation previously made
// by holder for the given room, date and slot.
func (c *HTTPClient) CancelBooking(ctx context.Context, roomID, date, slot, holder string) error {
	var response struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	err := c.post(ctx, map[string]string{
		"type":      "REQ_CANCEL",
		"room_id":   roomID,
		"user":      holder,
		"date":      date,
		"time_slot": slot,
	}, &response)
	if err != nil {
		return err
	}
	if response.Error != "" {
		return &RejectedError{Reason: response.Error}
	}
	if response.Status != "cancelled" {
		return ErrMalformed
	}
	return nil
}
