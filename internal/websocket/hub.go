// Package websocket pushes a user's order events to the browser tabs that
// user has open, so a storefront waiting on payment sees the order flip to
// paid without polling.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/agroshop-backend/internal/events"
	"github.com/ikkim/agroshop-backend/pkg/logger"
)

// Message types sent to clients.
const (
	TypeOrderUpdate = "order_update"
	TypePong        = "pong"
)

// ServerMessage is the envelope for everything written to a session.
type ServerMessage struct {
	Type  string             `json:"type"`
	Order *events.OrderEvent `json:"order,omitempty"`
}

type userMessage struct {
	userID uint
	data   []byte
}

// Hub tracks open sessions per user. A user may have several sessions
// (tabs, devices) and every one of them receives the user's events.
type Hub struct {
	clients map[uint][]*Client

	unregister chan *Client
	broadcast  chan *userMessage
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *userMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run serves deliveries and disconnects until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for userID, list := range h.clients {
				for _, client := range list {
					client.closeSend()
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[msg.userID] {
				if !client.trySend(msg.data) {
					// slow reader, drop the session
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": msg.userID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
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
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = kept
	}
	client.closeSend()

	logger.Info("Order stream client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(kept),
	})
}

// Register adds the session right away so events published after it
// returns are delivered.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		client.closeSend()
		return
	default:
	}

	h.clients[client.UserID] = append(h.clients[client.UserID], client)
	logger.Info("Order stream client registered", map[string]interface{}{
		"user_id":        client.UserID,
		"total_sessions": len(h.clients[client.UserID]),
	})
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues a message for every session of userID. Messages are
// dropped when the hub is saturated.
func (h *Hub) SendToUser(userID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal stream message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &userMessage{userID: userID, data: data}:
	case <-h.done:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}

// Publish makes the hub an events.Publisher: each order event goes to the
// order owner's sessions only.
func (h *Hub) Publish(_ context.Context, evt events.OrderEvent) error {
	return h.SendToUser(evt.UserID, ServerMessage{Type: TypeOrderUpdate, Order: &evt})
}

// Close stops Run and closes every session.
func (h *Hub) Close() error {
	h.stopOnce.Do(func() { close(h.done) })
	return nil
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SessionCount reports how many sessions userID has open.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
