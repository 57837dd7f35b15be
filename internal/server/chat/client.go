package chat

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aussiebroadwan/stackplate/pkg/idx"
)

type client struct {
	id   idx.ID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump relays inbound text frames to the hub until the peer goes away.
func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
		c.hub.logger.Debug("chat client left", slog.String("conn_id", c.id.String()))
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("chat read failed", slog.String("conn_id", c.id.String()), slog.Any("error", err))
			}
			return
		}
		if typ == websocket.TextMessage {
			c.hub.Broadcast(msg)
		}
	}
}

// writePump is the only writer on conn. It exits when the queue is closed or
// a write fails, and closing conn unblocks the read pump.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.remove(c)
				return
			}
		}
	}
}
