package engine

import (
	"fmt"
	"slices"
)

// Board is one player's grid. It tracks vessel cells, shots that landed,
// and the placements needed to tell when a vessel sinks.
type Board struct {
	size       int
	cells      [][]Cell
	placements []Placement
	vessels    int
	hits       int
}

// NewBoard creates an empty size x size board
func NewBoard(size int) *Board {
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Board{size: size, cells: cells}
}

// Cell returns the cell at c
func (b *Board) Cell(c Coord) Cell {
	return b.cells[c.Row][c.Col]
}

// Placements returns a copy of the placed vessels
func (b *Board) Placements() []Placement {
	return slices.Clone(b.placements)
}

// VesselCells returns the number of cells covered by placed vessels
func (b *Board) VesselCells() int {
	return b.vessels
}

// Hits returns the number of cells marked as hit
func (b *Board) Hits() int {
	return b.hits
}

// CanPlace checks a placement against bounds, overlap and adjacency
func (b *Board) CanPlace(p Placement) error {
	if p.Length < 1 {
		return fmt.Errorf("%w: length %d", ErrOutOfBounds, p.Length)
	}
	if p.Orientation != Horizontal && p.Orientation != Vertical {
		return fmt.Errorf("%w: orientation %q", ErrOutOfBounds, p.Orientation)
	}

	cells := p.Cells()
	for _, c := range cells {
		if !c.In(b.size) {
			return fmt.Errorf("%w: %s length %d %s", ErrOutOfBounds, p.Origin, p.Length, p.Orientation)
		}
		if b.cells[c.Row][c.Col].Vessel {
			return fmt.Errorf("%w at %s", ErrOverlap, c)
		}
	}
	for _, c := range cells {
		for _, n := range c.Neighbours(b.size) {
			if b.cells[n.Row][n.Col].Vessel {
				return fmt.Errorf("%w at %s", ErrAdjacent, c)
			}
		}
	}
	return nil
}

// Place adds a vessel after validating it
func (b *Board) Place(p Placement) error {
	if err := b.CanPlace(p); err != nil {
		return err
	}
	for _, c := range p.Cells() {
		b.cells[c.Row][c.Col].Vessel = true
	}
	b.placements = append(b.placements, p)
	b.vessels += p.Length
	return nil
}

// PlaceFleet places every vessel on a fresh board after checking that the
// lengths match the fleet exactly
func PlaceFleet(size int, fleet []int, placements []Placement) (*Board, error) {
	lengths := make([]int, len(placements))
	for i, p := range placements {
		lengths[i] = p.Length
	}
	want := slices.Clone(fleet)
	slices.Sort(lengths)
	slices.Sort(want)
	if !slices.Equal(lengths, want) {
		return nil, fmt.Errorf("%w: got lengths %v, want %v", ErrFleetMismatch, lengths, want)
	}

	board := NewBoard(size)
	for _, p := range placements {
		if err := board.Place(p); err != nil {
			return nil, err
		}
	}
	return board, nil
}

// Fire resolves a shot at c. Sinking a vessel marks its untouched
// neighbours as misses.
func (b *Board) Fire(c Coord) (Shot, error) {
	if !c.In(b.size) {
		return Shot{}, fmt.Errorf("%w: %s", ErrInvalidCoordinate, c)
	}
	cell := &b.cells[c.Row][c.Col]
	if cell.Resolved() {
		return Shot{}, fmt.Errorf("%w: %s", ErrAlreadyResolved, c)
	}

	shot := Shot{Coord: c}
	if !cell.Vessel {
		cell.Miss = true
		return shot, nil
	}

	cell.Hit = true
	b.hits++
	shot.Hit = true

	vessel, ok := b.vesselAt(c)
	if ok && b.Sunk(vessel) {
		shot.Sunk = true
		shot.Vessel = &vessel
		shot.AutoMiss = b.markAround(vessel)
	}
	return shot, nil
}

// Mark records a reported shot outcome on a board that holds no vessels,
// such as an attacker's view of the opponent.
func (b *Board) Mark(c Coord, hit bool) error {
	if !c.In(b.size) {
		return fmt.Errorf("%w: %s", ErrInvalidCoordinate, c)
	}
	cell := &b.cells[c.Row][c.Col]
	if cell.Resolved() {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, c)
	}
	if hit {
		cell.Hit = true
		b.hits++
	} else {
		cell.Miss = true
	}
	return nil
}

// Sunk reports whether every cell of the vessel is hit
func (b *Board) Sunk(p Placement) bool {
	for _, c := range p.Cells() {
		if !b.cells[c.Row][c.Col].Hit {
			return false
		}
	}
	return true
}

// AllSunk reports whether every vessel cell on the board is hit
func (b *Board) AllSunk() bool {
	return b.vessels > 0 && b.hits == b.vessels
}

func (b *Board) vesselAt(c Coord) (Placement, bool) {
	for _, p := range b.placements {
		if slices.Contains(p.Cells(), c) {
			return p, true
		}
	}
	return Placement{}, false
}

func (b *Board) markAround(p Placement) []Coord {
	var marked []Coord
	for _, c := range p.Cells() {
		for _, n := range c.Neighbours(b.size) {
			cell := &b.cells[n.Row][n.Col]
			if cell.Vessel || cell.Resolved() {
				continue
			}
			cell.Miss = true
			marked = append(marked, n)
		}
	}
	return marked
}
