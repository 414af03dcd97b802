// Package service coordinates rooms for connected players.
//
// The service package implements:
//   - The message router: decode, validate, dispatch, reject
//   - Connection lifecycle: greeting on connect, implicit leave on close
//   - Create, join and leave over the room registry
//   - Gameplay dispatch to the room's turn resolver
//   - Room broadcast with per-room ordering
//   - A read-only view (RoomService) for the HTTP and MCP surfaces
//
// Architecture:
//
// The Coordinator sits between the transport layer, which hands it raw
// frames keyed by connection id, and the room/turn packages. It knows
// connections only by id and reaches them through a Sender. For every
// message it locks the affected room, mutates it, enqueues the resulting
// events on each occupant's connection and unlocks, so events of one room
// are never reordered and no message sees a half-updated room. Lifecycle
// events go to the event bus after the room lock is released.
//
// Usage:
//
//	configs, _ := config.NewManager("configs")
//	hub := websocket.NewHub(logger)
//	coord := service.NewCoordinator(hub, configs,
//		service.WithLogger(logger),
//		service.WithPublisher(publisher),
//	)
//	hub.SetHandler(coord)
//
// Seats:
//
// A connection holds at most one seat. By default create and join are
// rejected with already_in_room while seated; WithImplicitLeave(true)
// leaves the current room first instead.
package service
