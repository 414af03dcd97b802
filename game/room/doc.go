// Package room holds rooms and the registry that indexes them.
//
// A Room seats at most two connections, labelled player1 and player2, and
// moves through three states:
//
//	waiting_for_opponent --seat--> active --vacate--> waiting_for_opponent
//	        |                                               |
//	        +----------------vacate last slot---------------+--> closed
//
// A joiner always takes the first free label, so after player1 leaves the
// next joiner becomes player1 again. Every state change happens under the
// room's own mutex; callers lock the room, mutate it, enqueue notifications
// and unlock.
//
// The Registry maps 8-character room ids to rooms. Ids come from a random
// UUID; on collision Create retries up to MaxIDAttempts times and then fails
// with ErrIDExhausted. Lookups are case-insensitive.
//
// Usage:
//
//	reg := room.NewRegistry()
//
//	rm, err := reg.Create(func(id string) (*room.Room, error) {
//		rm := room.New(id, cfg, resolver)
//		_, err := rm.Seat(connID)
//		return rm, err
//	})
//
//	err = reg.Join(rm.ID, otherConn, func(rm *room.Room, slot *room.Slot) {
//		// still holding rm's lock
//	})
package room
