package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"quickbites-api/orders"

	"github.com/rs/zerolog/log"
)

// Channel name helpers. Clients subscribe to these rooms; publishers target
// them without knowing who is connected.
func UserChannel(userID uint) string { return fmt.Sprintf("user:%d", userID) }

func RestaurantChannel(restaurantID uint) string { return fmt.Sprintf("restaurant:%d", restaurantID) }

func DeliveryChannel(partnerID uint) string { return fmt.Sprintf("delivery:%d", partnerID) }

func OrderChannel(orderID uint) string { return fmt.Sprintf("order:%d", orderID) }

type subscription struct {
	client *Client
	room   string
}

type broadcastMessage struct {
	room    string
	payload []byte
}

// Hub is the room-based broadcast center. Delivery is best-effort and
// at-most-once per connected subscriber: nothing is persisted or replayed
// for subscribers that are offline at publish time, and publishing never
// blocks or reports failure to the caller.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan subscription
	unregister chan *Client
	broadcast  chan broadcastMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan subscription),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMessage, 256),
	}
}

// Run owns the room table. Register, unregister and broadcast all funnel
// through here, so no locking is needed anywhere else.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			if h.rooms[sub.room] == nil {
				h.rooms[sub.room] = make(map[*Client]bool)
			}
			h.rooms[sub.room][sub.client] = true
			sub.client.rooms[sub.room] = true

		case client := <-h.unregister:
			for room := range client.rooms {
				delete(h.rooms[room], client)
				if len(h.rooms[room]) == 0 {
					delete(h.rooms, room)
				}
			}
			client.close()

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.room] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer: drop the message rather than
					// block every other subscriber.
					log.Debug().Str("room", msg.room).Str("conn", client.ID).Msg("ws: send buffer full, dropping")
				}
			}
		}
	}
}

// Join subscribes a live connection to a named channel.
func (h *Hub) Join(client *Client, room string) {
	h.register <- subscription{client: client, room: room}
}

// Drop disconnects a client from every room it joined.
func (h *Hub) Drop(client *Client) {
	h.unregister <- client
}

// publish marshals the event and enqueues it. If the hub's queue is full the
// event is dropped; a fan-out hiccup must never stall a state mutation.
func (h *Hub) publish(room string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Str("room", room).Msg("ws: marshal event failed")
		return
	}
	select {
	case h.broadcast <- broadcastMessage{room: room, payload: payload}:
	default:
		log.Warn().Str("room", room).Msg("ws: broadcast queue full, event dropped")
	}
}

type statusChangeEvent struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishStatusChange notifies the order's subscribers and the customer's
// personal channel of a lifecycle transition.
func (h *Hub) PublishStatusChange(event orders.StatusEvent) {
	payload := statusChangeEvent{
		Type:        "status_update",
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		Status:      string(event.Status),
		Timestamp:   event.Timestamp,
	}
	h.publish(OrderChannel(event.OrderID), payload)
	h.publish(UserChannel(event.CustomerID), payload)
}

type newOrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ItemCount   int       `json:"item_count"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishNewOrder targets the restaurant's channel only.
func (h *Hub) PublishNewOrder(restaurantID uint, summary orders.NewOrderSummary) {
	h.publish(RestaurantChannel(restaurantID), newOrderEvent{
		Type:        "new_order",
		OrderID:     summary.OrderID,
		OrderNumber: summary.OrderNumber,
		ItemCount:   summary.ItemCount,
		TotalAmount: summary.TotalAmount,
		Timestamp:   time.Now(),
	})
}

type locationUpdateEvent struct {
	Type      string    `json:"type"`
	OrderID   uint      `json:"order_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishLocationUpdate broadcasts delivery coordinates to the order's
// channel for live tracking.
func (h *Hub) PublishLocationUpdate(orderID uint, lat, lng float64) {
	h.publish(OrderChannel(orderID), locationUpdateEvent{
		Type:      "location_update",
		OrderID:   orderID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: time.Now(),
	})
}
