// Package websocket pushes per-visitor events to open browser tabs: a
// navigation forced by the server, or a change to the family list made in
// another tab.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	TypeNavigate      = "navigate"
	TypeFamilyChanged = "family_changed"
)

// Message is one event sent to a visitor's tabs.
type Message struct {
	Type   string `json:"type"`
	Path   string `json:"path,omitempty"`
	Action string `json:"action,omitempty"`
	ID     string `json:"id,omitempty"`
}

// NavigateMessage tells the tabs to load path.
func NavigateMessage(path string) Message {
	return Message{Type: TypeNavigate, Path: path}
}

// FamilyChangedMessage tells the tabs the list changed. action is "created",
// "updated" or "deleted".
func FamilyChangedMessage(action, id string) Message {
	return Message{Type: TypeFamilyChanged, Action: action, ID: id}
}

// Hub tracks the open connections of every visitor.
type Hub struct {
	mu       sync.RWMutex
	visitors map[string]map[*Client]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		visitors: make(map[string]map[*Client]struct{}),
		logger:   logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.visitors[c.visitorID]
	if !ok {
		set = make(map[*Client]struct{})
		h.visitors[c.visitorID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.visitors[c.visitorID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.visitors, c.visitorID)
		}
	}
	h.mu.Unlock()
}

// Send delivers msg to every tab of one visitor. A client whose buffer is
// full misses the message.
func (h *Hub) Send(visitorID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.visitors[visitorID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping message for slow client", "visitor", visitorID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of open connections for visitorID, or for
// everyone when visitorID is empty.
func (h *Hub) ClientCount(visitorID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if visitorID != "" {
		return len(h.visitors[visitorID])
	}
	n := 0
	for _, set := range h.visitors {
		n += len(set)
	}
	return n
}
