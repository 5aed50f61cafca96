package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active clients
type Hub struct {
	// Registered clients by session ID
	clients map[string]*Client

	// Mutex for clients map
	mu sync.RWMutex

	logger *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client to the hub. It is synchronous so that messages sent
// right after a connect reach the new client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	// A reload opens a new socket before the old one times out.
	existing, ok := h.clients[client.SessionID]
	h.clients[client.SessionID] = client
	h.mu.Unlock()

	if ok && existing != client {
		existing.Close()
	}
	h.logger.Debug("client registered", zap.String("session_id", client.SessionID))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Only unregister if it's the same client instance
	if existing, ok := h.clients[client.SessionID]; ok && existing == client {
		delete(h.clients, client.SessionID)
		h.logger.Debug("client unregistered", zap.String("session_id", client.SessionID))
	}
}

// GetClient returns a client by session ID
func (h *Hub) GetClient(sessionID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[sessionID]
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify sends msg to the client bound to sessionID, if it is connected.
func (h *Hub) Notify(sessionID string, msg *Message) {
	client := h.GetClient(sessionID)
	if client == nil {
		return
	}
	if err := client.SendMessage(msg); err != nil {
		h.logger.Warn("dropping message",
			zap.String("session_id", sessionID),
			zap.String("type", string(msg.Type)),
			zap.Error(err))
	}
}

// Error types
type HubError string

func (e HubError) Error() string { return string(e) }

const (
	ErrChannelFull  HubError = "send channel full"
	ErrEmptyPayload HubError = "message has no payload"
)

// marshalMessage marshals a message to JSON bytes
func marshalMessage(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}
