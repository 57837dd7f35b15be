// Package chat runs a single WebSocket broadcast room. Every text frame a
// client sends is relayed to every connected client, the sender included.
package chat

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aussiebroadwan/stackplate/pkg/idx"
	"github.com/aussiebroadwan/stackplate/pkg/slogx"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Config tunes the room. Zero values pick the defaults.
type Config struct {
	// SendBuffer is the number of frames queued per client before it is
	// considered too slow and dropped. Default 32.
	SendBuffer int

	// MaxMessageSize caps inbound frames in bytes. Default 4096.
	MaxMessageSize int64

	// AllowedOrigins lists browser origins allowed to connect. Empty means
	// same-origin only, "*" allows any.
	AllowedOrigins []string
}

// Hub owns the set of connected clients. The mutex covers the client map and
// every send into a client queue, so a queue is never closed mid-send.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 32
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	h := &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin) {
		return true
	}
	return "http://"+r.Host == origin || "https://"+r.Host == origin
}

// ServeHTTP upgrades the request and joins the connection to the room.
//
//	@Summary		Join the chat room
//	@Description	Upgrades to a WebSocket. Every text frame sent is broadcast to all connected clients.
//	@Tags			Chat
//	@Success		101
//	@Failure		400
//	@Router			/ws [get]
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		id:   idx.New(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
	}
	if !h.add(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	h.logger.Debug("chat client joined", slog.String("conn_id", c.id.String()))

	go c.writePump()
	go c.readPump()
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

// remove drops c and closes its queue, which in turn ends its write pump.
// Safe to call more than once.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Broadcast queues msg for every client. Clients whose queue is full are
// dropped, the others are unaffected.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow chat client", slog.String("conn_id", c.id.String()))
			h.removeLocked(c)
		}
	}
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
