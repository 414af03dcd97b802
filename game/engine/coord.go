package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a zero-based board position. Its text form is a column letter
// followed by a one-based row number, e.g. "B7".
type Coord struct {
	Row int
	Col int
}

// ParseCoord parses a coordinate for a size x size grid.
// The column letter is case-insensitive; the row must be written without
// leading zeros.
func ParseCoord(s string, size int) (Coord, error) {
	if len(s) < 2 {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	col := int(strings.ToUpper(s[:1])[0]) - 'A'
	if col < 0 || col >= size {
		return Coord{}, fmt.Errorf("%w: column %q outside A-%c", ErrInvalidCoordinate, s[:1], 'A'+size-1)
	}

	digits := s[1:]
	if digits[0] == '0' {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 || row > size {
		return Coord{}, fmt.Errorf("%w: row %q outside 1-%d", ErrInvalidCoordinate, digits, size)
	}

	return Coord{Row: row - 1, Col: col}, nil
}

// String formats the coordinate as column letter plus row number
func (c Coord) String() string {
	return string(rune('A'+c.Col)) + strconv.Itoa(c.Row+1)
}

// In reports whether the coordinate lies on a size x size grid
func (c Coord) In(size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

// Neighbours returns the in-bounds cells sharing an edge or corner with c
func (c Coord) Neighbours(size int) []Coord {
	out := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if n.In(size) {
				out = append(out, n)
			}
		}
	}
	return out
}

// FormatCoords converts coordinates to their text form
func FormatCoords(coords []Coord) []string {
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = c.String()
	}
	return out
}
