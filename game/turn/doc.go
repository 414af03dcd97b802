// Package turn resolves the moves played inside a room.
//
// A Resolver is chosen per room from the game preset's strategy:
//   - relay: attack coordinates are validated and forwarded to the
//     opponent; the defender reports hit or miss, and the attacker wins once
//     the reports account for every fleet cell
//   - fleet: vessels are placed on server-held boards and every shot is
//     judged by the server
//   - choice: simultaneous rock/paper/scissors rounds
//
// Resolvers address their notices relative to the acting player (actor,
// opponent, everyone); the caller maps them to connections and delivers
// them while holding the room lock, which also serializes calls into the
// resolver.
//
// Usage:
//
//	r, err := turn.New(cfg)
//	if err != nil {
//		return err
//	}
//	out, err := r.Submit("player1", "player2", env)
//	if err != nil {
//		// err is a *protocol.Error; nothing changed
//	}
//	for _, n := range out.Notices {
//		deliver(n.To, n.Event)
//	}
//	if out.Winner != "" {
//		// game over
//	}
package turn
