package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/turn"
)

func newTestRoom(id string) *Room {
	return New(id, &engine.GameConfig{Name: "rps", Strategy: engine.StrategyChoice}, turn.NewChoice())
}

func TestRoom_Seat(t *testing.T) {
	rm := newTestRoom("abcd1234")
	assert.Equal(t, StateWaiting, rm.State())

	first, err := rm.Seat("c1")
	require.NoError(t, err)
	assert.Equal(t, protocol.PlayerOne, first.Label)
	assert.Equal(t, StateWaiting, rm.State())

	_, err = rm.Seat("c1")
	assert.ErrorIs(t, err, ErrAlreadySeated)

	second, err := rm.Seat("c2")
	require.NoError(t, err)
	assert.Equal(t, protocol.PlayerTwo, second.Label)
	assert.Equal(t, StateActive, rm.State())

	_, err = rm.Seat("c3")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, 2, rm.Len())
	assert.Equal(t, []string{"c1", "c2"}, rm.Occupants())
}

func TestRoom_Opponent(t *testing.T) {
	rm := newTestRoom("abcd1234")
	_, err := rm.Seat("c1")
	require.NoError(t, err)
	assert.Nil(t, rm.Opponent("c1"))

	_, err = rm.Seat("c2")
	require.NoError(t, err)
	assert.Equal(t, "c2", rm.Opponent("c1").Conn)
	assert.Equal(t, "c1", rm.Opponent("c2").Conn)
	assert.Nil(t, rm.SlotOf("c3"))
}

func TestRoom_Vacate(t *testing.T) {
	rm := newTestRoom("abcd1234")
	_, _ = rm.Seat("c1")
	_, _ = rm.Seat("c2")

	// A pending choice must not survive the opponent leaving
	_, err := rm.Resolver.Submit(protocol.PlayerTwo, protocol.PlayerOne, &protocol.Envelope{Type: protocol.TypeMove, Choice: "rock"})
	require.NoError(t, err)

	slot, ok := rm.Vacate("c1")
	require.True(t, ok)
	assert.Equal(t, protocol.PlayerOne, slot.Label)
	assert.Equal(t, StateWaiting, rm.State())
	assert.Empty(t, rm.Resolver.Status().Ready)

	_, ok = rm.Vacate("c1")
	assert.False(t, ok, "vacating twice is a no-op")

	// The next joiner takes the free player1 label
	again, err := rm.Seat("c3")
	require.NoError(t, err)
	assert.Equal(t, protocol.PlayerOne, again.Label)
	assert.Equal(t, StateActive, rm.State())

	_, _ = rm.Vacate("c2")
	_, _ = rm.Vacate("c3")
	assert.Equal(t, StateClosed, rm.State())
	assert.Zero(t, rm.Len())

	_, err = rm.Seat("c4")
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestRoom_Close(t *testing.T) {
	rm := newTestRoom("abcd1234")
	_, _ = rm.Seat("c1")
	_, _ = rm.Seat("c2")

	slots := rm.Close()
	assert.Len(t, slots, 2)
	assert.Equal(t, StateClosed, rm.State())
	assert.Zero(t, rm.Len())
}

func TestRoom_Info(t *testing.T) {
	rm := newTestRoom("abcd1234")
	rm.Lock()
	_, _ = rm.Seat("c1")
	rm.Unlock()

	info := rm.Info()
	assert.Equal(t, "abcd1234", info.ID)
	assert.Equal(t, engine.StrategyChoice, info.Strategy)
	assert.Equal(t, StateWaiting, info.State)
	require.Len(t, info.Players, 1)
	assert.Equal(t, protocol.PlayerOne, info.Players[0].Label)
	assert.Equal(t, 1, info.Status.Round)
}
