package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound frames buffered per connection before it counts as stalled.
	sendBufferSize = 256
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrNoHandler        = errors.New("no message handler configured")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from any origin, including tunnels
		return true
	},
}

// Handler receives the lifecycle and inbound frames of every connection.
// Calls for one connection are made sequentially from its read goroutine.
type Handler interface {
	Connect(connID string)
	HandleMessage(ctx context.Context, connID string, raw []byte)
	Disconnect(connID string)
}

// Client is one WebSocket connection
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// Hub maintains the set of active connections and delivers frames to them
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex

	handler Handler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetHandler sets the handler for inbound frames. It must be called before
// the hub serves connections.
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// ServeWS upgrades the request and runs the connection until it closes
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.handler == nil {
		h.logger.Error("websocket upgrade refused", "error", ErrNoHandler)
		http.Error(w, ErrNoHandler.Error(), http.StatusServiceUnavailable)
		return
	}
	if h.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	if !h.register(client) {
		// Stop ran after the upgrade
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Info("client connected", "conn", client.id, "remote", r.RemoteAddr, "clients", h.ConnectionCount())

	go client.writePump()
	go client.readPump()
}

// Send queues a frame for one connection without blocking. A connection
// whose buffer is full is closed.
func (h *Hub) Send(connID string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ErrConnectionClosed
	}
	select {
	case client.send <- payload:
		return nil
	default:
		client.close()
		return ErrSendBufferFull
	}
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every connection and refuses new ones
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
		clients = append(clients, client)
	}
	h.mu.Unlock()

	h.logger.Info("websocket hub stopped", "closed", len(clients))
}

// register adds the client unless the hub is stopping. Stop cancels the
// context before sweeping the map, so a client added here is always swept.
func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		return false
	}
	h.clients[client.id] = client
	return true
}

// unregister removes the client and closes its send channel once
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
	}
}

// close tears the connection down; the read pump then unregisters it
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// readPump hands inbound frames to the handler in arrival order
func (c *Client) readPump() {
	handler := c.hub.handler
	defer func() {
		handler.Disconnect(c.id)
		c.hub.unregister(c)
		c.close()
		c.hub.logger.Info("client disconnected", "conn", c.id, "clients", c.hub.ConnectionCount())
	}()

	handler.Connect(c.id)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "conn", c.id, "error", err)
			}
			return
		}
		handler.HandleMessage(c.hub.ctx, c.id, message)
	}
}

// writePump writes queued frames, one message per frame, and keeps the
// connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Debug("websocket write failed", "conn", c.id, "error", err)
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
