package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/room"
	"github.com/wricardo/duelrooms/transport/eventbus"
)

// Coordinator owns the room registry and routes every inbound message.
// Lock order is room lock, then registry or session lock; the latter two
// are never held while a room lock is taken.
type Coordinator struct {
	rooms     *room.Registry
	configs   ConfigCatalog
	sender    Sender
	publisher eventbus.Publisher
	logger    *slog.Logger

	implicitLeave bool
	startedAt     time.Time

	mu       sync.Mutex
	sessions map[string]*connSession

	roomsCreated atomic.Int64
	gamesWon     atomic.Int64
}

// connSession tracks one open connection
type connSession struct {
	room     string
	openedAt time.Time
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithImplicitLeave makes create and join leave the current room first
// instead of rejecting the message
func WithImplicitLeave(enabled bool) Option {
	return func(c *Coordinator) {
		c.implicitLeave = enabled
	}
}

// WithPublisher sets the lifecycle event publisher
func WithPublisher(p eventbus.Publisher) Option {
	return func(c *Coordinator) {
		c.publisher = p
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRegistry replaces the room registry
func WithRegistry(r *room.Registry) Option {
	return func(c *Coordinator) {
		c.rooms = r
	}
}

// NewCoordinator creates a coordinator that delivers events through sender
func NewCoordinator(sender Sender, configs ConfigCatalog, opts ...Option) *Coordinator {
	c := &Coordinator{
		rooms:     room.NewRegistry(),
		configs:   configs,
		sender:    sender,
		publisher: eventbus.Nop{},
		logger:    slog.Default(),
		startedAt: time.Now(),
		sessions:  make(map[string]*connSession),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect registers a newly opened connection and greets it
func (c *Coordinator) Connect(connID string) {
	c.mu.Lock()
	if _, exists := c.sessions[connID]; !exists {
		c.sessions[connID] = &connSession{openedAt: time.Now()}
	}
	c.mu.Unlock()

	c.logger.Debug("connection opened", "conn", connID)
	c.send(connID, protocol.Connected{Type: protocol.EventConnected, Message: "connected to duelrooms"})
}

// Disconnect performs the implicit leave for a closed connection and
// forgets it. Calling it more than once is harmless.
func (c *Coordinator) Disconnect(connID string) {
	c.Leave(context.Background(), connID, false)

	c.mu.Lock()
	delete(c.sessions, connID)
	c.mu.Unlock()

	c.logger.Debug("connection closed", "conn", connID)
}

// HandleMessage decodes one frame and dispatches it. Rejections are sent
// back to the originating connection only.
func (c *Coordinator) HandleMessage(ctx context.Context, connID string, raw []byte) {
	env, err := protocol.Decode(raw)
	if err != nil {
		c.logger.Debug("malformed message", "conn", connID, "error", err)
		c.reject(connID, protocol.Errorf(protocol.CodeInvalidFormat, "invalid message format"))
		return
	}

	if !protocol.Known(env.Type) {
		c.logger.Debug("unknown message type", "conn", connID, "type", env.Type)
		c.reject(connID, protocol.Errorf(protocol.CodeUnknownType, "unknown message type %q", env.Type))
		return
	}

	switch env.Type {
	case protocol.TypeCreate:
		err = c.Create(ctx, connID, env.Game)
	case protocol.TypeJoin:
		err = c.Join(ctx, connID, env.Room)
	case protocol.TypeLeave:
		c.Leave(ctx, connID, true)
	case protocol.TypePing:
		c.send(connID, protocol.Pong{Type: protocol.EventPong})
	case protocol.TypeAttack, protocol.TypeMove, protocol.TypePlace, protocol.TypeReport:
		err = c.Act(ctx, connID, env)
	}

	if err != nil {
		c.logger.Debug("message rejected", "conn", connID, "type", env.Type, "error", err)
		c.reject(connID, err)
	}
}

// Broadcast sends an event to every occupant of a room
func (c *Coordinator) Broadcast(roomID string, event any) error {
	rm, err := c.rooms.Get(roomID)
	if err != nil {
		c.logger.Warn("broadcast to unknown room", "room", roomID)
		return err
	}

	rm.Lock()
	defer rm.Unlock()
	c.broadcastLocked(rm, event)
	return nil
}

// broadcastLocked requires the room lock so events stay in order per room
func (c *Coordinator) broadcastLocked(rm *room.Room, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal event", "room", rm.ID, "error", err)
		return
	}
	for _, conn := range rm.Occupants() {
		c.deliver(conn, data)
	}
}

func (c *Coordinator) send(connID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal event", "conn", connID, "error", err)
		return
	}
	c.deliver(connID, data)
}

func (c *Coordinator) deliver(connID string, data []byte) {
	if err := c.sender.Send(connID, data); err != nil {
		c.logger.Warn("dropped outbound message", "conn", connID, "error", err)
	}
}

func (c *Coordinator) reject(connID string, err error) {
	var perr *protocol.Error
	if !errors.As(err, &perr) {
		c.logger.Error("internal error handling message", "conn", connID, "error", err)
		perr = protocol.Errorf(protocol.CodeInternal, "internal error")
	}
	c.send(connID, perr.Event())
}

func (c *Coordinator) publish(ctx context.Context, events ...eventbus.Event) {
	for _, ev := range events {
		if ev.At.IsZero() {
			ev.At = time.Now().UTC()
		}
		if err := c.publisher.Publish(ctx, ev); err != nil {
			c.logger.Warn("failed to publish room event", "kind", ev.Kind, "room", ev.Room, "error", err)
		}
	}
}

// roomOf returns the room the connection is seated in, or ""
func (c *Coordinator) roomOf(connID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[connID]; ok {
		return s.room
	}
	return ""
}

func (c *Coordinator) bind(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[connID]
	if !ok {
		s = &connSession{openedAt: time.Now()}
		c.sessions[connID] = s
	}
	s.room = roomID
}

// unbind clears the seat only if it still points at roomID
func (c *Coordinator) unbind(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[connID]; ok && s.room == roomID {
		s.room = ""
	}
}
