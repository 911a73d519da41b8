package notify

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	Send chan []byte
	Room string
}

// Attach registers conn in room and starts its pumps. It returns once the
// hub has accepted the client, or nil after closing conn when the hub has
// stopped.
func (h *Hub) Attach(conn *websocket.Conn, room string) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		Send: make(chan []byte, sendBuffer),
		Room: room,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return client
}

// readPump only drains control frames; clients are not expected to talk.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", slog.String("room", c.Room), slog.Any("error", err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn("websocket write failed", slog.String("room", c.Room), slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
