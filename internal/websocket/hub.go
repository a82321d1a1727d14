package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

const (
	EventOrderCreated  = "order_created"
	EventStatusChanged = "status_changed"
)

// Event is the wire format pushed to dashboard clients.
type Event struct {
	Type      string       `json:"type"`
	Order     *model.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// Hub fans order events out to every connected dashboard session. Multiple
// sessions per admin are supported; a slow client gets dropped rather than
// blocking the rest.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.CustomerID] = append(h.clients[client.CustomerID], client)
			sessions := len(h.clients[client.CustomerID])
			h.mu.Unlock()
			logger.Info("Dashboard client connected", map[string]interface{}{
				"customer_id":    client.CustomerID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if list, ok := h.clients[client.CustomerID]; ok {
				remaining := make([]*Client, 0, len(list))
				for _, c := range list {
					if c != client {
						remaining = append(remaining, c)
					}
				}
				if len(remaining) == 0 {
					delete(h.clients, client.CustomerID)
				} else {
					h.clients[client.CustomerID] = remaining
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Dashboard client disconnected", map[string]interface{}{
				"customer_id": client.CustomerID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for customerID, list := range h.clients {
				for _, client := range list {
					select {
					case client.Send <- message:
					default:
						logger.Warn("Dropping slow dashboard client", map[string]interface{}{
							"customer_id": customerID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// BroadcastOrderCreated pushes a new order to every dashboard session.
func (h *Hub) BroadcastOrderCreated(order *model.Order) {
	h.broadcastEvent(EventOrderCreated, order)
}

// BroadcastStatusChange pushes an order status change to every dashboard
// session.
func (h *Hub) BroadcastStatusChange(order *model.Order) {
	h.broadcastEvent(EventStatusChanged, order)
}

func (h *Hub) broadcastEvent(eventType string, order *model.Order) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Order:     order,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"event": eventType,
		})
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Order event dropped: broadcast queue full", map[string]interface{}{
			"event": eventType,
		})
	}
}
