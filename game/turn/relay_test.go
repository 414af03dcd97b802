package turn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
)

const (
	p1 = protocol.PlayerOne
	p2 = protocol.PlayerTwo
)

func attackMsg(coord string) *protocol.Envelope {
	return &protocol.Envelope{Type: protocol.TypeAttack, Coord: coord}
}

func reportMsg(coord string, hit bool) *protocol.Envelope {
	return &protocol.Envelope{Type: protocol.TypeReport, Coord: coord, Hit: &hit}
}

func requireCode(t *testing.T, err error, code protocol.Code) {
	t.Helper()
	var perr *protocol.Error
	require.True(t, errors.As(err, &perr), "expected *protocol.Error, got %v", err)
	assert.Equal(t, code, perr.Code)
}

func smallRelay() *Relay {
	return NewRelay(&engine.GameConfig{Name: "small", Strategy: engine.StrategyRelay, GridSize: 10, Fleet: []int{2}})
}

func TestRelay_Attack(t *testing.T) {
	r := NewRelay(engine.DefaultGameConfig())

	out, err := r.Submit(p1, p2, attackMsg("b7"))
	require.NoError(t, err)
	require.Len(t, out.Notices, 2)

	assert.Equal(t, ToOpponent, out.Notices[0].To)
	assert.Equal(t, protocol.AttackRelayed{Type: protocol.EventAttackRelayed, Coord: "B7", From: p1}, out.Notices[0].Event)
	assert.Equal(t, ToActor, out.Notices[1].To)
	assert.Equal(t, protocol.AttackConfirmed{Type: protocol.EventAttackConfirmed, Coord: "B7"}, out.Notices[1].Event)
	assert.Empty(t, out.Winner)
}

func TestRelay_RejectsInvalidCoordinates(t *testing.T) {
	r := NewRelay(engine.DefaultGameConfig())

	for _, coord := range []string{"K1", "A11", "", "A0", "7B"} {
		out, err := r.Submit(p1, p2, attackMsg(coord))
		requireCode(t, err, protocol.CodeInvalidCoordinate)
		assert.Empty(t, out.Notices, coord)
	}
}

func TestRelay_RejectsDuplicateAttack(t *testing.T) {
	r := NewRelay(engine.DefaultGameConfig())

	_, err := r.Submit(p1, p2, attackMsg("C3"))
	require.NoError(t, err)

	// Unreported and reported shots are both duplicates
	_, err = r.Submit(p1, p2, attackMsg("c3"))
	requireCode(t, err, protocol.CodeDuplicateAttack)

	_, err = r.Submit(p2, p1, reportMsg("C3", false))
	require.NoError(t, err)
	_, err = r.Submit(p1, p2, attackMsg("C3"))
	requireCode(t, err, protocol.CodeDuplicateAttack)

	// The opponent may fire at the same cell on the other board
	_, err = r.Submit(p2, p1, attackMsg("C3"))
	require.NoError(t, err)
}

func TestRelay_Report(t *testing.T) {
	r := smallRelay()

	t.Run("report without attack", func(t *testing.T) {
		_, err := r.Submit(p2, p1, reportMsg("A1", true))
		requireCode(t, err, protocol.CodeUnknownAttack)
	})

	t.Run("report without hit field", func(t *testing.T) {
		_, err := r.Submit(p2, p1, &protocol.Envelope{Type: protocol.TypeReport, Coord: "A1"})
		requireCode(t, err, protocol.CodeInvalidFormat)
	})

	t.Run("attacker cannot report own shot", func(t *testing.T) {
		_, err := r.Submit(p1, p2, attackMsg("A1"))
		require.NoError(t, err)
		_, err = r.Submit(p1, p2, reportMsg("A1", true))
		requireCode(t, err, protocol.CodeUnknownAttack)
	})

	t.Run("hit is broadcast", func(t *testing.T) {
		out, err := r.Submit(p2, p1, reportMsg("A1", true))
		require.NoError(t, err)
		require.Len(t, out.Notices, 1)
		assert.Equal(t, ToEveryone, out.Notices[0].To)
		assert.Equal(t, protocol.AttackResult{Type: protocol.EventAttackResult, Coord: "A1", By: p1, Hit: true, Hits: 1}, out.Notices[0].Event)
		assert.Empty(t, out.Winner)
	})

	t.Run("second report of same cell", func(t *testing.T) {
		_, err := r.Submit(p2, p1, reportMsg("A1", true))
		requireCode(t, err, protocol.CodeUnknownAttack)
	})

	t.Run("last hit wins", func(t *testing.T) {
		_, err := r.Submit(p1, p2, attackMsg("B1"))
		require.NoError(t, err)
		out, err := r.Submit(p2, p1, reportMsg("B1", true))
		require.NoError(t, err)
		assert.Equal(t, p1, out.Winner)
	})
}

func TestRelay_MissesDoNotWin(t *testing.T) {
	r := smallRelay()
	for _, coord := range []string{"A1", "A2", "A3"} {
		_, err := r.Submit(p1, p2, attackMsg(coord))
		require.NoError(t, err)
		out, err := r.Submit(p2, p1, reportMsg(coord, false))
		require.NoError(t, err)
		assert.Empty(t, out.Winner)
	}
	assert.Equal(t, 0, r.Status().Hits[p1])
}

func TestRelay_Forget(t *testing.T) {
	r := smallRelay()
	_, err := r.Submit(p1, p2, attackMsg("A1"))
	require.NoError(t, err)

	r.Forget()

	_, err = r.Submit(p2, p1, reportMsg("A1", true))
	requireCode(t, err, protocol.CodeUnknownAttack)
	_, err = r.Submit(p1, p2, attackMsg("A1"))
	require.NoError(t, err)
}

func TestRelay_UnsupportedMove(t *testing.T) {
	r := smallRelay()
	_, err := r.Submit(p1, p2, &protocol.Envelope{Type: protocol.TypeMove, Choice: "rock"})
	requireCode(t, err, protocol.CodeUnsupportedMove)
}
