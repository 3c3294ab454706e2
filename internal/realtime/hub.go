package realtime

import (
	"encoding/json"
	"sync"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event is the payload broadcast to subscribers. Delivery is
// fire-and-forget: no ordering or delivery guarantees.
type Event struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	SprintID  string `json:"sprintId,omitempty"`
	ActorID   string `json:"actorId,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub maintains active connections in two dimensions: project rooms
// (every subscriber of a project sees its board events) and per-user
// private channels (notifications).
type Hub struct {
	mu             sync.RWMutex
	projectClients map[string]map[Client]struct{}
	userClients    map[string]map[Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		projectClients: make(map[string]map[Client]struct{}),
		userClients:    make(map[string]map[Client]struct{}),
	}
}

// Subscribe adds a client to a project room.
func (h *Hub) Subscribe(projectID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.projectClients[projectID]; !ok {
		h.projectClients[projectID] = make(map[Client]struct{})
	}
	h.projectClients[projectID][client] = struct{}{}
}

// Register adds a client to a user's private channel.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userClients[userID]; !ok {
		h.userClients[userID] = make(map[Client]struct{})
	}
	h.userClients[userID][client] = struct{}{}
}

// Unregister removes a client from every room and channel it joined.
func (h *Hub) Unregister(client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for projectID, clients := range h.projectClients {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.projectClients, projectID)
		}
	}
	for userID, clients := range h.userClients {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, userID)
		}
	}
}

// BroadcastProject sends an event to every subscriber of a project room.
func (h *Hub) BroadcastProject(projectID string, evt Event) {
	message, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	// A failed write is not fatal here; the ws handler notices the dead
	// connection on its side and unregisters the client.
	for c := range h.projectClients[projectID] {
		_ = c.Send(message)
	}
}

// BroadcastUser sends an event to a user's private channel.
func (h *Hub) BroadcastUser(userID string, evt Event) {
	message, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userClients[userID] {
		_ = c.Send(message)
	}
}
