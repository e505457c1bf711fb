package remote

import (
	"errors"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidBaseURL = errors.New("invalid authority base URL")

// Holder owns the current Client instance and allows the operator to redirect
// the gateway to a different authority at runtime. Reconfiguration constructs
// a fresh client rather than mutating the existing one, so calls already in
// flight keep resolving against the address they started with.
type Holder struct {
	mu      sync.RWMutex
	client  Client
	timeout time.Duration
}

func NewHolder(baseURL string, timeout time.Duration) *Holder {
	return &Holder{
		client:  NewHTTPClient(baseURL, timeout),
		timeout: timeout,
	}
}

// Current returns the client in effect right now.
func (h *Holder) Current() Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// Swap replaces the current client with a new one pointing at baseURL.
func (h *Holder) Swap(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidBaseURL
	}

	h.mu.Lock()
	old := h.client.BaseURL()
	h.client = NewHTTPClient(baseURL, h.timeout)
	h.mu.Unlock()

	log.Infof("reservation authority redirected from %s to %s", old, baseURL)
	return nil
}
