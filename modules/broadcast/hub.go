package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the subset of the websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a connected WebSocket client. A user may hold
// several clients at once (multiple tabs or devices); each joins the
// room named after the user's ID.
type Client struct {
	ID     string
	UserID string
	Conn   Conn
}

// Envelope is the wire format pushed to clients.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub manages WebSocket connections and per-user fan-out.
type Hub struct {
	clients    map[string]*Client         // clientID -> Client
	rooms      map[string]map[string]bool // userID -> set of clientIDs
	register   chan *Client
	unregister chan *Client
	push       chan *pushRequest
	done       chan struct{}
	mu         sync.RWMutex
}

type pushRequest struct {
	UserIDs []string
	Event   string
	Data    any
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan *pushRequest, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[hub] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case req := <-h.push:
			h.handlePush(req)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// closeAllClients closes all connected client connections.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if h.rooms[client.UserID] == nil {
		h.rooms[client.UserID] = make(map[string]bool)
	}
	h.rooms[client.UserID][client.ID] = true
	log.Printf("[hub] Client %s (user %s) registered", client.ID, client.UserID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		if h.rooms[client.UserID] != nil {
			delete(h.rooms[client.UserID], client.ID)
			if len(h.rooms[client.UserID]) == 0 {
				delete(h.rooms, client.UserID)
			}
		}
		log.Printf("[hub] Client %s (user %s) unregistered", client.ID, client.UserID)
	}
}

func (h *Hub) handlePush(req *pushRequest) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(Envelope{Type: req.Event, Payload: req.Data})
	if err != nil {
		log.Printf("[hub] Failed to marshal %s push: %v", req.Event, err)
		return
	}

	// A clientID can only appear in one room, so no dedup is needed.
	for _, userID := range req.UserIDs {
		clientIDs, ok := h.rooms[userID]
		if !ok {
			continue
		}
		for clientID := range clientIDs {
			if client, ok := h.clients[clientID]; ok {
				h.sendToClient(client, data)
			}
		}
	}
}

func (h *Hub) sendToClient(client *Client, data []byte) {
	if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("[hub] Failed to send to client %s: %v", client.ID, err)
	}
}

// Register adds a client to the hub and its user's room.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push sends an event to every open client of every listed user.
// Unknown or offline users are skipped silently.
func (h *Hub) Push(userIDs []string, event string, data any) {
	h.push <- &pushRequest{UserIDs: userIDs, Event: event, Data: data}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserClientCount returns the number of open clients for a user.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.rooms[userID]; ok {
		return len(clients)
	}
	return 0
}
