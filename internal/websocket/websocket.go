package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/galettery/galettery/internal/events"
	"github.com/galettery/galettery/internal/logger"
	"github.com/galettery/galettery/internal/models"
	"github.com/galettery/galettery/internal/services"
)

// Message types sent to clients
const (
	TypeOrderingStatus = "ordering_status"
	TypeNewOrder       = "new_order"
	TypeOrderUpdated   = "order_updated"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Subscription scopes a client to one restaurant. Kitchen clients receive
// every order of the restaurant; customer clients only follow OrderID.
type Subscription struct {
	RestaurantID string
	Kitchen      bool
	OrderID      string
}

// Hub maintains the set of active clients and routes messages to the
// clients of each restaurant
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	settings   services.SettingsServicer
}

// envelope is a message with its audience
type envelope struct {
	restaurantID string
	orderID      string
	kitchenOnly  bool
	message      models.WSMessage
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
	sub  Subscription
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, settings services.SettingsServicer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		settings:   settings,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message routing
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "restaurant_id", client.sub.RestaurantID, "kitchen", client.sub.Kitchen, "total_clients", total)

			// Send the restaurant's current ordering status to the new client
			go func() {
				open, err := h.settings.IsOrderingOpen(context.Background(), client.sub.RestaurantID)
				if err != nil {
					h.log.Warn("Failed to read ordering status", "restaurant_id", client.sub.RestaurantID, "error", err)
					return
				}
				h.mutex.RLock()
				defer h.mutex.RUnlock()
				if h.clients[client] {
					client.send <- orderingStatusMessage(client.sub.RestaurantID, open)
				}
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if !client.wants(env) {
					continue
				}
				select {
				case client.send <- env.message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// wants reports whether the client is in the audience of env
func (c *Client) wants(env envelope) bool {
	if c.sub.RestaurantID != env.restaurantID {
		return false
	}
	if c.sub.Kitchen {
		return true
	}
	if env.kitchenOnly {
		return false
	}
	return env.orderID == "" || env.orderID == c.sub.OrderID
}

// ClientCount returns the number of connected clients of a restaurant
func (h *Hub) ClientCount(restaurantID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for c := range h.clients {
		if c.sub.RestaurantID == restaurantID {
			n++
		}
	}
	return n
}

// BroadcastMessage sends a message to every client of a restaurant
func (h *Hub) BroadcastMessage(restaurantID, msgType string, payload interface{}) {
	h.broadcast <- envelope{
		restaurantID: restaurantID,
		message:      models.WSMessage{Type: msgType, Payload: payload},
	}
}

var _ services.Broadcaster = (*Hub)(nil)

// BroadcastOrderingStatus implements services.Broadcaster
func (h *Hub) BroadcastOrderingStatus(restaurantID string, open bool) {
	h.broadcast <- envelope{
		restaurantID: restaurantID,
		message:      orderingStatusMessage(restaurantID, open),
	}
}

// BroadcastOrder implements services.Broadcaster. New orders go to kitchen
// clients only; status changes also reach the customer following the order.
func (h *Hub) BroadcastOrder(eventType string, order *models.Order) {
	env := envelope{
		restaurantID: order.RestaurantID,
		orderID:      order.ID,
		message:      models.WSMessage{Type: TypeOrderUpdated, Payload: order},
	}
	if eventType == events.TopicOrderPlaced {
		env.kitchenOnly = true
		env.message.Type = TypeNewOrder
	}
	h.broadcast <- env
}

func orderingStatusMessage(restaurantID string, open bool) models.WSMessage {
	return models.WSMessage{
		Type: TypeOrderingStatus,
		Payload: map[string]interface{}{
			"restaurant_id": restaurantID,
			"open":          open,
		},
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients only listen; anything they send is logged and dropped
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request and registers a client with the given subscription
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, sub Subscription) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
		sub:  sub,
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}
