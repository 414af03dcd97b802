package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/room"
	"github.com/wricardo/duelrooms/game/turn"
	"github.com/wricardo/duelrooms/transport/eventbus"
)

// Create opens a room for the given preset (the default preset when game
// is empty) and seats the connection as player1
func (c *Coordinator) Create(ctx context.Context, connID, game string) error {
	if err := c.checkUnseated(connID); err != nil {
		return err
	}
	cfg, err := c.resolveGame(game)
	if err != nil {
		return err
	}
	if err := c.ensureUnseated(ctx, connID); err != nil {
		return err
	}

	resolver, err := turn.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build resolver: %w", err)
	}

	// The room becomes visible to joiners as soon as the registry holds it,
	// so the creator is bound and greeted before that.
	rm, err := c.rooms.Create(func(id string) (*room.Room, error) {
		rm := room.New(id, cfg, resolver)
		slot, err := rm.Seat(connID)
		if err != nil {
			return nil, err
		}
		c.bind(connID, id)
		c.send(connID, roomInfo(protocol.EventRoomCreated, rm, slot))
		return rm, nil
	})
	if errors.Is(err, room.ErrIDExhausted) {
		c.logger.Error("room id space exhausted", "conn", connID, "attempts", room.MaxIDAttempts)
		return protocol.Errorf(protocol.CodeInternal, "failed to create unique room id")
	}
	if err != nil {
		return err
	}

	c.roomsCreated.Add(1)
	c.logger.Info("room created", "room", rm.ID, "game", gameID(cfg), "strategy", cfg.Strategy)
	c.publish(ctx, eventbus.Event{
		Kind:     eventbus.KindCreated,
		Room:     rm.ID,
		Player:   protocol.PlayerOne,
		Game:     gameID(cfg),
		Strategy: string(cfg.Strategy),
	})
	return nil
}

// Join seats the connection in an existing room
func (c *Coordinator) Join(ctx context.Context, connID, roomID string) error {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return protocol.Errorf(protocol.CodeRoomNotFound, "room id is required")
	}
	if err := c.ensureUnseated(ctx, connID); err != nil {
		return err
	}

	var joined eventbus.Event
	err := c.rooms.Join(roomID, connID, func(rm *room.Room, slot *room.Slot) {
		c.bind(connID, rm.ID)
		c.send(connID, roomInfo(protocol.EventRoomJoined, rm, slot))
		c.broadcastLocked(rm, protocol.PlayerEvent{
			Type:    protocol.EventPlayerJoined,
			Room:    rm.ID,
			Player:  slot.Label,
			Players: rm.Len(),
		})
		if rm.State() == room.StateActive {
			c.broadcastLocked(rm, protocol.RoomEvent{Type: protocol.EventGameStart, Room: rm.ID})
		}
		joined = eventbus.Event{
			Kind:     eventbus.KindJoined,
			Room:     rm.ID,
			Player:   slot.Label,
			Game:     gameID(rm.Game),
			Strategy: string(rm.Game.Strategy),
		}
	})

	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return protocol.Errorf(protocol.CodeRoomNotFound, "room %s does not exist", roomID)
	case errors.Is(err, room.ErrRoomFull):
		return protocol.Errorf(protocol.CodeRoomFull, "room %s is full; only %d players allowed", roomID, room.MaxSlots)
	case errors.Is(err, room.ErrAlreadySeated):
		return protocol.Errorf(protocol.CodeAlreadyInRoom, "already in room %s", roomID)
	case err != nil:
		return err
	}

	c.logger.Info("player joined", "room", joined.Room, "player", joined.Player)
	c.publish(ctx, joined)
	return nil
}

// Leave vacates the connection's seat. The survivor is told and the room
// waits for a new opponent; an emptied room is deleted. Leaving while not
// seated does nothing. explicit acknowledges the leave to the connection.
func (c *Coordinator) Leave(ctx context.Context, connID string, explicit bool) {
	roomID := c.roomOf(connID)
	if roomID == "" {
		return
	}

	rm, err := c.rooms.Get(roomID)
	if err != nil {
		c.unbind(connID, roomID)
		return
	}

	rm.Lock()
	slot, ok := rm.Vacate(connID)
	if !ok {
		// Already removed, e.g. by the end of a game
		rm.Unlock()
		c.unbind(connID, roomID)
		return
	}
	c.unbind(connID, roomID)

	if explicit {
		c.send(connID, protocol.RoomEvent{Type: protocol.EventLeftRoom, Room: rm.ID})
	}

	events := []eventbus.Event{{Kind: eventbus.KindLeft, Room: rm.ID, Player: slot.Label}}
	if rm.Len() == 0 {
		c.rooms.Remove(rm)
		events = append(events, eventbus.Event{Kind: eventbus.KindDeleted, Room: rm.ID})
	} else {
		c.broadcastLocked(rm, protocol.PlayerEvent{
			Type:    protocol.EventPlayerLeft,
			Room:    rm.ID,
			Player:  slot.Label,
			Players: rm.Len(),
		})
	}
	remaining := rm.Len()
	rm.Unlock()

	c.logger.Info("player left", "room", rm.ID, "player", slot.Label, "remaining", remaining)
	c.publish(ctx, events...)
}

// Act hands a gameplay message to the room's resolver and delivers the
// resulting notices
func (c *Coordinator) Act(ctx context.Context, connID string, env *protocol.Envelope) error {
	roomID := c.roomOf(connID)
	if roomID == "" {
		return protocol.Errorf(protocol.CodeNotInRoom, "join or create a room first")
	}

	rm, err := c.rooms.Get(roomID)
	if err != nil {
		c.unbind(connID, roomID)
		return protocol.Errorf(protocol.CodeNotInRoom, "join or create a room first")
	}

	rm.Lock()
	slot := rm.SlotOf(connID)
	if slot == nil {
		rm.Unlock()
		return protocol.Errorf(protocol.CodeNotInRoom, "join or create a room first")
	}
	if rm.State() != room.StateActive {
		rm.Unlock()
		return protocol.Errorf(protocol.CodeOpponentMissing, "waiting for opponent")
	}
	opponent := rm.Opponent(connID)

	out, err := rm.Resolver.Submit(slot.Label, opponent.Label, env)
	if err != nil {
		rm.Unlock()
		return err
	}
	rm.Touch()

	for _, n := range out.Notices {
		switch n.To {
		case turn.ToActor:
			c.send(connID, n.Event)
		case turn.ToOpponent:
			c.send(opponent.Conn, n.Event)
		case turn.ToEveryone:
			c.broadcastLocked(rm, n.Event)
		}
	}

	var events []eventbus.Event
	if out.Winner != "" {
		c.broadcastLocked(rm, protocol.GameWon{Type: protocol.EventGameWon, Room: rm.ID, Winner: out.Winner})
		for _, s := range rm.Close() {
			c.unbind(s.Conn, rm.ID)
		}
		c.rooms.Remove(rm)
		c.gamesWon.Add(1)
		events = append(events,
			eventbus.Event{Kind: eventbus.KindWon, Room: rm.ID, Winner: out.Winner, Game: gameID(rm.Game), Strategy: string(rm.Game.Strategy)},
			eventbus.Event{Kind: eventbus.KindDeleted, Room: rm.ID},
		)
	}
	rm.Unlock()

	if out.Winner != "" {
		c.logger.Info("game won", "room", rm.ID, "winner", out.Winner)
	}
	c.publish(ctx, events...)
	return nil
}

// ensureUnseated rejects, or with implicit leave performs a leave, when the
// connection already holds a seat
func (c *Coordinator) ensureUnseated(ctx context.Context, connID string) error {
	if err := c.checkUnseated(connID); err != nil {
		return err
	}
	if c.roomOf(connID) != "" {
		c.Leave(ctx, connID, false)
	}
	return nil
}

// checkUnseated rejects a seated connection unless implicit leave is on;
// it never leaves the room itself
func (c *Coordinator) checkUnseated(connID string) error {
	current := c.roomOf(connID)
	if current != "" && !c.implicitLeave {
		return protocol.Errorf(protocol.CodeAlreadyInRoom, "already in room %s; leave it first", current)
	}
	return nil
}

func (c *Coordinator) resolveGame(name string) (*engine.GameConfig, error) {
	def := c.configs.GetDefault()
	if name == "" || (def != nil && strings.EqualFold(name, gameID(def))) {
		if def == nil {
			return nil, protocol.Errorf(protocol.CodeUnknownGame, "no default game configured")
		}
		return def, nil
	}

	cfg, err := c.configs.LoadConfig(name)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, protocol.Errorf(protocol.CodeUnknownGame, "game %q not found", name)
	}
	if err != nil {
		return nil, protocol.Errorf(protocol.CodeUnknownGame, "game %q is not playable: %v", name, err)
	}
	return cfg, nil
}

func roomInfo(eventType string, rm *room.Room, slot *room.Slot) protocol.RoomInfo {
	info := protocol.RoomInfo{
		Type:     eventType,
		Room:     rm.ID,
		Player:   slot.Label,
		Game:     gameID(rm.Game),
		Strategy: string(rm.Game.Strategy),
	}
	if rm.Game.Strategy.Spatial() {
		info.GridSize = rm.Game.GridSize
		info.Fleet = rm.Game.Fleet
		info.FleetCells = rm.Game.FleetCells()
	}
	return info
}

func gameID(cfg *engine.GameConfig) string {
	if cfg.ID != "" {
		return cfg.ID
	}
	return cfg.Name
}
