package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"ai-mediation-be/internal/entity"
	"ai-mediation-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// feedChannel is the redis pub/sub channel used to fan message events
// out to the other instances of the service.
const feedChannel = "mediation_feed"

// FeedEvent is what a client receives for every message row appended to
// its thread. Clients deduplicate by id: the same row may arrive via
// both the live feed and a poll.
type FeedEvent struct {
	Type    string       `json:"type"`
	Message *FeedMessage `json:"message"`
}

// FeedMessage mirrors the REST message shape so feed and poll payloads
// are interchangeable on the client.
type FeedMessage struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Hub fans message-insert events out to connected clients. A client is
// bound to one (session, role) pair and only ever sees rows belonging
// to its own thread.
type Hub struct {
	// sessionID -> connected clients (both roles, multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"role":       client.Role,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Deliver pushes a new message row to the local clients whose thread it
// belongs to, then publishes it to redis for the other instances.
func (h *Hub) Deliver(msg *entity.Message) {
	h.deliverLocal(msg)

	if h.rdb != nil {
		payload, err := json.Marshal(msg)
		if err != nil {
			return
		}
		h.rdb.Publish(context.Background(), feedChannel, payload)
	}
}

func (h *Hub) deliverLocal(msg *entity.Message) {
	data, err := json.Marshal(FeedEvent{Type: "message", Message: &FeedMessage{
		Id:        msg.Id,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}})
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := h.clients[msg.SessionId]
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.wantsRole(msg.Role) {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{
				"session_id": client.SessionID,
				"role":       client.Role,
			})
			// Only the unregister branch closes Send, so a client that
			// stalls twice before Run drains the channel is not closed
			// twice.
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the single feed channel and filters
	// on local sessions; deliverLocal applies the role filter.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	for redisMsg := range pubsub.Channel() {
		var msg entity.Message
		if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		_, localFound := h.clients[msg.SessionId]
		h.mu.RUnlock()
		if localFound {
			h.deliverLocal(&msg)
		}
	}
}
