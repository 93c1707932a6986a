package websocket

import (
	"context"
	"encoding/json"

	"ai-examgen-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel is the Redis pub/sub channel carrying messages between
// instances so a user connected elsewhere still gets their updates.
const relayChannel = "session_events"

type outboundMessage struct {
	userID uuid.UUID
	data   []byte
}

// Hub fans session events out to every websocket connection a user has.
// All client bookkeeping happens inside Run, so only that goroutine touches
// the map or closes a Send channel.
type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client
	outbound   chan outboundMessage

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outboundMessage, 256),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.outbound:
			h.deliverLocal(msg.userID, msg.data)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
	}
}

func (h *Hub) deliverLocal(userID uuid.UUID, data []byte) {
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
			// Slow consumer. Drop the connection; the client reconnects.
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.removeClient(client)
		}
	}
}

// Send pushes one typed payload to every connection the user has, here and
// on other instances. With Redis available the relay is the single delivery
// path (this instance receives its own publish); without it, delivery is
// local only. Implements service.NotificationDelivery.
func (h *Hub) Send(userID uuid.UUID, eventType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal outbound message", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb != nil {
		envelope, _ := json.Marshal(map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        data,
		})
		if err := h.rdb.Publish(context.Background(), relayChannel, envelope).Err(); err == nil {
			return
		}
		h.logger.Warn("Hub", "Relay publish failed, delivering locally", map[string]interface{}{"user_id": userID})
	}

	select {
	case h.outbound <- outboundMessage{userID: userID, data: data}:
	default:
		h.logger.Warn("Hub", "Outbound queue full, dropping message", map[string]interface{}{"user_id": userID})
	}
}

// subscribeToRedis receives relayed envelopes from other instances and
// queues any addressed to a locally connected user.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Bad relay envelope", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserID)
		if err != nil {
			continue
		}

		select {
		case h.outbound <- outboundMessage{userID: uid, data: envelope.Message}:
		default:
			h.logger.Warn("Hub", "Outbound queue full, dropping relayed message", map[string]interface{}{"user_id": uid})
		}
	}
}
