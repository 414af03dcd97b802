// Package engine provides the rules shared by every duel played in a room.
//
// The engine package implements the pure game model, with no I/O and no
// locking:
//   - Coordinate parsing and formatting for square grids ("B7")
//   - Boards with vessel placement, shot resolution and sink detection
//   - The rock/paper/scissors choice enumeration and round decision
//   - Game presets (GameConfig) and their validation
//
// Core Types:
//
// GameConfig describes a preset: the turn strategy a room runs and, for
// spatial strategies, the grid size and fleet composition. Board holds the
// cells of one player's grid. Placement is a single vessel (origin,
// orientation, length). Choice is a simultaneous-move value.
//
// Usage:
//
//	cfg := engine.DefaultGameConfig()
//	board := engine.NewBoard(cfg.GridSize)
//
//	origin, err := engine.ParseCoord("B2", cfg.GridSize)
//	if err != nil {
//		return err
//	}
//	if err := board.Place(engine.Placement{Origin: origin, Orientation: engine.Horizontal, Length: 3}); err != nil {
//		return err
//	}
//
//	shot, err := board.Fire(origin)
//	// shot.Hit == true, shot.Sunk == false
//
// Placement Rules:
//
// Vessels must lie fully inside the grid, must not overlap, and must not
// touch another vessel, not even diagonally. When a vessel sinks, its
// unresolved neighbour cells are marked as misses since no vessel can occupy
// them.
package engine
