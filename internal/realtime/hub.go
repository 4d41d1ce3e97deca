// Package realtime pushes challenge events to connected clients over
// WebSocket so open dashboards can refresh their challenge lists without
// polling. Delivery is best effort: slow consumers are disconnected rather
// than allowed to stall a broadcast.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clubarena/matchup/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 32
)

// Message represents a JSON payload delivered to subscribers.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks the open connections per user and fans events out to them.
type Hub struct {
	mu       sync.RWMutex
	byUser   map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		byUser: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Bearer-token auth happens before the upgrade; the Origin
				// header adds nothing for non-cookie clients.
				return true
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// Serve upgrades the HTTP connection to a WebSocket and registers the client.
func (h *Hub) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		hub:    h,
		socket: conn,
		userID: userID,
		send:   make(chan Message, sendBufferSize),
	}
	h.register(client)

	go client.writeLoop()
	client.readLoop()
}

// BroadcastToUser delivers a message to every open connection of the user.
func (h *Hub) BroadcastToUser(userID string, message Message) {
	if userID == "" {
		return
	}

	var slow []*connection

	h.mu.RLock()
	for client := range h.byUser[userID] {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// close outside the read lock: close() re-enters the hub to unregister
	for _, client := range slow {
		h.log.Warn("dropping slow client", zap.String("user_id", client.userID))
		client.close()
	}
}

// BroadcastToUsers delivers a message to each of the supplied user IDs.
func (h *Hub) BroadcastToUsers(userIDs []string, message Message) {
	for _, userID := range userIDs {
		h.BroadcastToUser(userID, message)
	}
}

func (h *Hub) register(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.byUser[client.userID] == nil {
		h.byUser[client.userID] = make(map[*connection]struct{})
	}
	h.byUser[client.userID][client] = struct{}{}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.byUser[client.userID]
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.byUser, client.userID)
	}
}

type connection struct {
	hub    *Hub
	socket *websocket.Conn
	userID string
	send   chan Message
	once   sync.Once
}

func (c *connection) close() {
	// The send channel is left open: closing it would race with concurrent
	// broadcasts. Closing the socket makes both loops return.
	c.once.Do(func() {
		c.hub.unregister(c)
		_ = c.socket.Close()
	})
}

// readLoop only services control frames; clients never send data messages.
func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(512)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
