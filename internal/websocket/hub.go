package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/logger"
)

const (
	// inbound messages allowed per client per second
	maxMessagesPerSecond = 10

	MessageTypeCartUpdated = "cart_updated"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// CartMessage is pushed to every socket of a session after each cart change
type CartMessage struct {
	Type string        `json:"type"`
	Cart cart.Snapshot `json:"cart"`
}

type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one socket listening to a cart session
type Client struct {
	Hub           *Hub
	Conn          *Conn
	SessionID     string
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	rateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 32),
	}
}

type broadcastMessage struct {
	sessionID string
	payload   []byte
}

// Hub fans cart updates out to the sockets of each session. A session may
// be open in several tabs.
type Hub struct {
	clients    map[string][]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan broadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			n := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"sockets":    n,
			})

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[msg.sessionID] {
				select {
				case client.Send <- msg.payload:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": msg.sessionID,
					})
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = kept
	}
	close(client.Send)

	logger.Debug("WebSocket client unregistered", map[string]interface{}{
		"session_id": client.SessionID,
		"sockets":    len(kept),
	})
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// CartUpdated queues a cart_updated message for the session's sockets.
// It never blocks the cart store: a full queue drops the message.
func (h *Hub) CartUpdated(sessionID string, state cart.State) {
	if !h.HasClients(sessionID) {
		return
	}

	payload, err := json.Marshal(CartMessage{Type: MessageTypeCartUpdated, Cart: state.Snapshot()})
	if err != nil {
		logger.Error("Failed to marshal cart message", err)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{sessionID: sessionID, payload: payload}:
	default:
		logger.Warn("Broadcast channel full, cart update dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

func (h *Hub) HasClients(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]) > 0
}

func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// HandleClientMessage answers pings. Anything else is ignored; clients
// change the cart through the REST endpoints.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("WebSocket rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Debug("Ignoring malformed client message", map[string]interface{}{
			"session_id": client.SessionID,
		})
		return
	}

	if msg.Type == MessageTypePing {
		pong, _ := json.Marshal(ClientMessage{Type: MessageTypePong})
		select {
		case client.Send <- pong:
		default:
		}
	}
}
