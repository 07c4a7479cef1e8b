package websocket

import (
	"time"

	"ai-mediation-be/internal/entity"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is a single websocket connection bound to one partner of one
// session. It only receives events for its own thread.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	SessionID uuid.UUID
	Role      entity.Role

	Send chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID uuid.UUID, role entity.Role) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		SessionID: sessionID,
		Role:      role,
		Send:      make(chan []byte, 256),
	}
}

// wantsRole reports whether a message with the given role tag belongs to
// this client's thread.
func (c *Client) wantsRole(role entity.Role) bool {
	for _, r := range c.Role.ThreadRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// ReadPump drains the connection so control frames are processed. The
// feed is one-way; inbound data frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
