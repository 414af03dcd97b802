package engine

import "errors"

// Strategy selects how a room resolves turns
type Strategy string

const (
	// StrategyRelay forwards coordinates between players without judging them
	StrategyRelay Strategy = "relay"
	// StrategyFleet resolves shots against server-held boards
	StrategyFleet Strategy = "fleet"
	// StrategyChoice resolves simultaneous rock/paper/scissors rounds
	StrategyChoice Strategy = "choice"

	// Validation constants
	MinGridSize     = 5
	MaxGridSize     = 26
	DefaultGridSize = 10
)

// DefaultFleet is the classic fleet: one four, two threes, three twos, four ones
var DefaultFleet = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrOutOfBounds       = errors.New("vessel out of bounds")
	ErrOverlap           = errors.New("vessel overlaps another vessel")
	ErrAdjacent          = errors.New("vessel touches another vessel")
	ErrFleetMismatch     = errors.New("vessels do not match fleet")
	ErrAlreadyResolved   = errors.New("cell already resolved")
	ErrInvalidChoice     = errors.New("invalid choice")
)

// Valid reports whether s is a known strategy
func (s Strategy) Valid() bool {
	switch s {
	case StrategyRelay, StrategyFleet, StrategyChoice:
		return true
	}
	return false
}

// Spatial reports whether the strategy plays on a grid
func (s Strategy) Spatial() bool {
	return s == StrategyRelay || s == StrategyFleet
}

// GameConfig represents a game preset loaded from JSON or YAML
type GameConfig struct {
	// ID is the preset id (file name without extension); set by the loader
	ID          string   `json:"id,omitempty" yaml:"-"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Strategy    Strategy `json:"strategy" yaml:"strategy"`
	GridSize    int      `json:"grid_size,omitempty" yaml:"grid_size,omitempty"`
	Fleet       []int    `json:"fleet,omitempty" yaml:"fleet,omitempty"`
}

// FleetCells returns the number of cells covered by the whole fleet
func (c *GameConfig) FleetCells() int {
	total := 0
	for _, n := range c.Fleet {
		total += n
	}
	return total
}

// DefaultGameConfig returns the built-in classic relay preset
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		ID:          "classic",
		Name:        "classic",
		Description: "Classic 10x10 naval duel; players judge their own boards",
		Strategy:    StrategyRelay,
		GridSize:    DefaultGridSize,
		Fleet:       append([]int(nil), DefaultFleet...),
	}
}

// Cell is one square of a board
type Cell struct {
	Vessel bool `json:"vessel,omitempty"`
	Hit    bool `json:"hit,omitempty"`
	Miss   bool `json:"miss,omitempty"`
}

// Resolved reports whether a shot already landed on the cell
func (c Cell) Resolved() bool {
	return c.Hit || c.Miss
}

// Orientation is the axis a vessel extends along from its origin
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Placement is a single vessel on a board
type Placement struct {
	Origin      Coord       `json:"origin"`
	Orientation Orientation `json:"orientation"`
	Length      int         `json:"length"`
}

// Cells returns every coordinate the vessel covers
func (p Placement) Cells() []Coord {
	cells := make([]Coord, 0, p.Length)
	for i := 0; i < p.Length; i++ {
		c := p.Origin
		if p.Orientation == Vertical {
			c.Row += i
		} else {
			c.Col += i
		}
		cells = append(cells, c)
	}
	return cells
}

// Shot is the outcome of firing at a board cell
type Shot struct {
	Coord    Coord      `json:"coord"`
	Hit      bool       `json:"hit"`
	Sunk     bool       `json:"sunk"`
	Vessel   *Placement `json:"vessel,omitempty"`
	AutoMiss []Coord    `json:"auto_miss,omitempty"`
}
