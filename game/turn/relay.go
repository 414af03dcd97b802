package turn

import (
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
)

// Relay forwards attack coordinates to the opponent without judging them.
// Players own their boards and answer each relayed attack with a report;
// the reports feed the attacker's view of the opponent, which decides the
// winner once it holds as many hits as the fleet has cells.
type Relay struct {
	cfg *engine.GameConfig
	// views maps an attacker to its view of the opponent's board
	views map[string]*engine.Board
	// awaiting maps a defender to relayed coordinates it has not reported
	awaiting map[string]map[engine.Coord]bool
}

// NewRelay creates a relay resolver
func NewRelay(cfg *engine.GameConfig) *Relay {
	r := &Relay{cfg: cfg}
	r.Forget()
	return r
}

func (r *Relay) Strategy() engine.Strategy {
	return engine.StrategyRelay
}

func (r *Relay) Submit(actor, opponent string, env *protocol.Envelope) (Outcome, error) {
	switch env.Type {
	case protocol.TypeAttack:
		return r.attack(actor, opponent, env.Coord)
	case protocol.TypeReport:
		if env.Hit == nil {
			return Outcome{}, protocol.Errorf(protocol.CodeInvalidFormat, "report requires a hit field")
		}
		return r.report(actor, opponent, env.Coord, *env.Hit)
	default:
		return Outcome{}, unsupported(engine.StrategyRelay, env.Type)
	}
}

func (r *Relay) attack(actor, opponent, raw string) (Outcome, error) {
	var out Outcome
	c, err := parseCoord(raw, r.cfg.GridSize)
	if err != nil {
		return out, err
	}

	view := r.view(actor)
	if view.Cell(c).Resolved() || r.awaiting[opponent][c] {
		return out, protocol.Errorf(protocol.CodeDuplicateAttack, "already fired at %s", c)
	}

	if r.awaiting[opponent] == nil {
		r.awaiting[opponent] = make(map[engine.Coord]bool)
	}
	r.awaiting[opponent][c] = true

	out.add(ToOpponent, protocol.AttackRelayed{Type: protocol.EventAttackRelayed, Coord: c.String(), From: actor})
	out.add(ToActor, protocol.AttackConfirmed{Type: protocol.EventAttackConfirmed, Coord: c.String()})
	return out, nil
}

// report is sent by the defender; opponent is the attacker
func (r *Relay) report(actor, opponent, raw string, hit bool) (Outcome, error) {
	var out Outcome
	c, err := parseCoord(raw, r.cfg.GridSize)
	if err != nil {
		return out, err
	}
	if !r.awaiting[actor][c] {
		return out, protocol.Errorf(protocol.CodeUnknownAttack, "no pending attack at %s", c)
	}

	view := r.view(opponent)
	if err := view.Mark(c, hit); err != nil {
		return out, protocol.Errorf(protocol.CodeDuplicateAttack, "%v", err)
	}
	delete(r.awaiting[actor], c)

	out.add(ToEveryone, protocol.AttackResult{
		Type:  protocol.EventAttackResult,
		Coord: c.String(),
		By:    opponent,
		Hit:   hit,
		Hits:  view.Hits(),
	})
	if hit && view.Hits() >= r.cfg.FleetCells() {
		out.Winner = opponent
	}
	return out, nil
}

func (r *Relay) view(attacker string) *engine.Board {
	b, ok := r.views[attacker]
	if !ok {
		b = engine.NewBoard(r.cfg.GridSize)
		r.views[attacker] = b
	}
	return b
}

func (r *Relay) Forget() {
	r.views = make(map[string]*engine.Board)
	r.awaiting = make(map[string]map[engine.Coord]bool)
}

func (r *Relay) Status() Status {
	hits := make(map[string]int, len(r.views))
	for label, view := range r.views {
		hits[label] = view.Hits()
	}
	return Status{Hits: hits}
}
