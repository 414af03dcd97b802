package turn

import (
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
)

// Choice resolves simultaneous rock/paper/scissors rounds. A player may
// change a pending choice until the opponent's arrives; the last one counts.
type Choice struct {
	pending map[string]engine.Choice
	round   int
}

// NewChoice creates a choice resolver
func NewChoice() *Choice {
	c := &Choice{}
	c.Forget()
	return c
}

func (c *Choice) Strategy() engine.Strategy {
	return engine.StrategyChoice
}

func (c *Choice) Submit(actor, opponent string, env *protocol.Envelope) (Outcome, error) {
	var out Outcome
	if env.Type != protocol.TypeMove {
		return out, unsupported(engine.StrategyChoice, env.Type)
	}
	choice, err := engine.ParseChoice(env.Choice)
	if err != nil {
		return out, protocol.Errorf(protocol.CodeInvalidChoice, "%v", err)
	}

	c.pending[actor] = choice
	out.add(ToEveryone, protocol.PlayerNotice{Type: protocol.EventMoveReceived, Player: actor})

	theirs, ok := c.pending[opponent]
	if !ok {
		return out, nil
	}

	result := protocol.RoundResult{
		Type:  protocol.EventRoundResult,
		Round: c.round,
		Choices: map[string]string{
			actor:    string(choice),
			opponent: string(theirs),
		},
	}
	switch engine.Decide(choice, theirs) {
	case 1:
		result.Winner = actor
	case -1:
		result.Winner = opponent
	default:
		result.Draw = true
	}
	out.add(ToEveryone, result)

	c.pending = make(map[string]engine.Choice)
	c.round++
	out.add(ToEveryone, protocol.RoundReset{Type: protocol.EventRoundReset, Round: c.round})
	return out, nil
}

func (c *Choice) Forget() {
	c.pending = make(map[string]engine.Choice)
	c.round = 1
}

func (c *Choice) Status() Status {
	st := Status{Round: c.round}
	for _, label := range []string{protocol.PlayerOne, protocol.PlayerTwo} {
		if _, ok := c.pending[label]; ok {
			st.Ready = append(st.Ready, label)
		}
	}
	return st
}
