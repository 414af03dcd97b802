package turn

import (
	"errors"

	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
)

// Fleet judges shots against boards held by the server. Both players place
// their vessels first; player one opens, a hit keeps the turn and a miss
// passes it.
type Fleet struct {
	cfg     *engine.GameConfig
	boards  map[string]*engine.Board
	turn    string
	started bool
}

// NewFleet creates a fleet resolver
func NewFleet(cfg *engine.GameConfig) *Fleet {
	f := &Fleet{cfg: cfg}
	f.Forget()
	return f
}

func (f *Fleet) Strategy() engine.Strategy {
	return engine.StrategyFleet
}

func (f *Fleet) Submit(actor, opponent string, env *protocol.Envelope) (Outcome, error) {
	switch env.Type {
	case protocol.TypePlace:
		return f.place(actor, opponent, env.Vessels)
	case protocol.TypeAttack:
		return f.attack(actor, opponent, env.Coord)
	default:
		return Outcome{}, unsupported(engine.StrategyFleet, env.Type)
	}
}

func (f *Fleet) place(actor, opponent string, specs []protocol.VesselSpec) (Outcome, error) {
	var out Outcome
	if f.started {
		return out, protocol.Errorf(protocol.CodeInvalidPlacement, "vessels are locked once both players have placed")
	}

	placements := make([]engine.Placement, 0, len(specs))
	for _, spec := range specs {
		origin, err := parseCoord(spec.Coord, f.cfg.GridSize)
		if err != nil {
			return out, err
		}
		placements = append(placements, engine.Placement{
			Origin:      origin,
			Orientation: engine.Orientation(spec.Orientation),
			Length:      spec.Length,
		})
	}

	board, err := engine.PlaceFleet(f.cfg.GridSize, f.cfg.Fleet, placements)
	if err != nil {
		return out, placementError(err)
	}
	f.boards[actor] = board

	out.add(ToEveryone, protocol.PlayerNotice{Type: protocol.EventVesselsPlaced, Player: actor})
	if f.boards[opponent] != nil {
		f.started = true
		f.turn = protocol.PlayerOne
		out.add(ToEveryone, protocol.PlayerNotice{Type: protocol.EventTurn, Player: f.turn})
	}
	return out, nil
}

func (f *Fleet) attack(actor, opponent, raw string) (Outcome, error) {
	var out Outcome
	if !f.started {
		return out, protocol.Errorf(protocol.CodeNotReady, "both players must place their vessels first")
	}
	if f.turn != actor {
		return out, protocol.Errorf(protocol.CodeNotYourTurn, "it is %s's turn", f.turn)
	}
	c, err := parseCoord(raw, f.cfg.GridSize)
	if err != nil {
		return out, err
	}

	target := f.boards[opponent]
	shot, err := target.Fire(c)
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyResolved) {
			return out, protocol.Errorf(protocol.CodeDuplicateAttack, "already fired at %s", c)
		}
		return out, protocol.Errorf(protocol.CodeInvalidCoordinate, "%v", err)
	}

	out.add(ToEveryone, protocol.AttackResult{
		Type:     protocol.EventAttackResult,
		Coord:    c.String(),
		By:       actor,
		Hit:      shot.Hit,
		Sunk:     shot.Sunk,
		AutoMiss: engine.FormatCoords(shot.AutoMiss),
		Hits:     target.Hits(),
	})

	if target.AllSunk() {
		out.Winner = actor
		return out, nil
	}
	if !shot.Hit {
		f.turn = opponent
	}
	out.add(ToEveryone, protocol.PlayerNotice{Type: protocol.EventTurn, Player: f.turn})
	return out, nil
}

func (f *Fleet) Forget() {
	f.boards = make(map[string]*engine.Board)
	f.turn = ""
	f.started = false
}

func (f *Fleet) Status() Status {
	st := Status{Turn: f.turn, Hits: make(map[string]int)}
	for _, label := range []string{protocol.PlayerOne, protocol.PlayerTwo} {
		b, ok := f.boards[label]
		if !ok {
			continue
		}
		st.Ready = append(st.Ready, label)
		// hits taken by this board are scored by the other player
		st.Hits[other(label)] = b.Hits()
	}
	return st
}

func other(label string) string {
	if label == protocol.PlayerOne {
		return protocol.PlayerTwo
	}
	return protocol.PlayerOne
}
