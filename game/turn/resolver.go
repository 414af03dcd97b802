package turn

import (
	"errors"
	"fmt"

	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
)

// Audience selects who receives a notice
type Audience int

const (
	ToActor Audience = iota
	ToOpponent
	ToEveryone
)

// Notice is an event addressed relative to the player who acted
type Notice struct {
	To    Audience
	Event any
}

// Outcome is what a resolver produced for one message
type Outcome struct {
	Notices []Notice
	// Winner is the label of the player who won the game, if it ended
	Winner string
}

func (o *Outcome) add(to Audience, event any) {
	o.Notices = append(o.Notices, Notice{To: to, Event: event})
}

// Status is a read-only summary of a contest in progress
type Status struct {
	Round int            `json:"round,omitempty"`
	Turn  string         `json:"turn,omitempty"`
	Ready []string       `json:"ready,omitempty"`
	Hits  map[string]int `json:"hits,omitempty"`
}

// Resolver judges the moves of one room. Implementations are not safe for
// concurrent use; the room lock serializes calls.
type Resolver interface {
	// Strategy returns the strategy the resolver implements
	Strategy() engine.Strategy
	// Submit applies a move by actor against opponent and returns the
	// notices to deliver. A returned error is a *protocol.Error and leaves
	// the resolver unchanged.
	Submit(actor, opponent string, env *protocol.Envelope) (Outcome, error)
	// Forget drops all contest state, e.g. after a player left
	Forget()
	// Status summarizes the contest without revealing hidden information
	Status() Status
}

// New creates the resolver for a game preset
func New(cfg *engine.GameConfig) (Resolver, error) {
	switch cfg.Strategy {
	case engine.StrategyRelay:
		return NewRelay(cfg), nil
	case engine.StrategyFleet:
		return NewFleet(cfg), nil
	case engine.StrategyChoice:
		return NewChoice(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
}

func unsupported(s engine.Strategy, msgType string) *protocol.Error {
	return protocol.Errorf(protocol.CodeUnsupportedMove, "%s games do not accept %s messages", s, msgType)
}

func parseCoord(s string, size int) (engine.Coord, error) {
	c, err := engine.ParseCoord(s, size)
	if err != nil {
		return engine.Coord{}, protocol.Errorf(protocol.CodeInvalidCoordinate, "%v", err)
	}
	return c, nil
}

func placementError(err error) *protocol.Error {
	if errors.Is(err, engine.ErrInvalidCoordinate) {
		return protocol.Errorf(protocol.CodeInvalidCoordinate, "%v", err)
	}
	return protocol.Errorf(protocol.CodeInvalidPlacement, "%v", err)
}
