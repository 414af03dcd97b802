package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/protocol"
	"github.com/wricardo/duelrooms/game/turn"
)

// MaxSlots is the number of players a room seats
const MaxSlots = 2

var (
	ErrRoomFull      = errors.New("room is full")
	ErrRoomClosed    = errors.New("room is closed")
	ErrAlreadySeated = errors.New("connection already seated in room")
)

// State is the lifecycle state of a room
type State string

const (
	StateWaiting State = "waiting_for_opponent"
	StateActive  State = "active"
	StateClosed  State = "closed"
)

// Slot is a seat in a room bound to one connection
type Slot struct {
	Label    string    `json:"label"`
	Conn     string    `json:"-"`
	JoinedAt time.Time `json:"joined_at"`
}

// Room is a two-seat contest. All methods except Info expect the caller to
// hold the room lock.
type Room struct {
	ID        string
	Game      *engine.GameConfig
	Resolver  turn.Resolver
	CreatedAt time.Time

	mu         sync.Mutex
	state      State
	slots      []*Slot
	lastActive time.Time
}

// New creates an empty room in the waiting state
func New(id string, game *engine.GameConfig, resolver turn.Resolver) *Room {
	now := time.Now()
	return &Room{
		ID:         id,
		Game:       game,
		Resolver:   resolver,
		CreatedAt:  now,
		state:      StateWaiting,
		lastActive: now,
	}
}

// Lock acquires the room lock
func (r *Room) Lock() { r.mu.Lock() }

// Unlock releases the room lock
func (r *Room) Unlock() { r.mu.Unlock() }

// State returns the lifecycle state
func (r *Room) State() State {
	return r.state
}

// Len returns the number of occupied slots
func (r *Room) Len() int {
	return len(r.slots)
}

// Seat binds a connection to the first free label
func (r *Room) Seat(conn string) (*Slot, error) {
	if r.state == StateClosed {
		return nil, ErrRoomClosed
	}
	if r.SlotOf(conn) != nil {
		return nil, ErrAlreadySeated
	}
	if len(r.slots) >= MaxSlots {
		return nil, ErrRoomFull
	}

	slot := &Slot{Label: r.freeLabel(), Conn: conn, JoinedAt: time.Now()}
	r.slots = append(r.slots, slot)
	if len(r.slots) == MaxSlots {
		r.state = StateActive
	}
	r.touch()
	return slot, nil
}

// Vacate removes the connection's slot. The remaining player waits for a
// new opponent and the contest starts over. Removing the last slot closes
// the room.
func (r *Room) Vacate(conn string) (*Slot, bool) {
	for i, s := range r.slots {
		if s.Conn != conn {
			continue
		}
		r.slots = append(r.slots[:i], r.slots[i+1:]...)
		r.Resolver.Forget()
		if len(r.slots) == 0 {
			r.state = StateClosed
		} else {
			r.state = StateWaiting
		}
		r.touch()
		return s, true
	}
	return nil, false
}

// Close removes every slot and returns them
func (r *Room) Close() []*Slot {
	slots := r.slots
	r.slots = nil
	r.state = StateClosed
	r.touch()
	return slots
}

// SlotOf returns the slot bound to conn, or nil
func (r *Room) SlotOf(conn string) *Slot {
	for _, s := range r.slots {
		if s.Conn == conn {
			return s
		}
	}
	return nil
}

// Opponent returns the other slot, or nil while waiting
func (r *Room) Opponent(conn string) *Slot {
	for _, s := range r.slots {
		if s.Conn != conn {
			return s
		}
	}
	return nil
}

// Occupants returns the connections of every occupied slot
func (r *Room) Occupants() []string {
	conns := make([]string, len(r.slots))
	for i, s := range r.slots {
		conns[i] = s.Conn
	}
	return conns
}

// Touch records activity
func (r *Room) Touch() {
	r.touch()
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

func (r *Room) freeLabel() string {
	for _, label := range []string{protocol.PlayerOne, protocol.PlayerTwo} {
		taken := false
		for _, s := range r.slots {
			if s.Label == label {
				taken = true
				break
			}
		}
		if !taken {
			return label
		}
	}
	return ""
}

// Info is a read-only snapshot of a room
type Info struct {
	ID         string          `json:"id"`
	Game       string          `json:"game"`
	Strategy   engine.Strategy `json:"strategy"`
	GridSize   int             `json:"grid_size,omitempty"`
	State      State           `json:"state"`
	Players    []Slot          `json:"players"`
	Status     turn.Status     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
}

// Info takes the room lock and returns a snapshot
func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	players := make([]Slot, len(r.slots))
	for i, s := range r.slots {
		players[i] = *s
	}

	game := r.Game.ID
	if game == "" {
		game = r.Game.Name
	}

	return Info{
		ID:         r.ID,
		Game:       game,
		Strategy:   r.Game.Strategy,
		GridSize:   r.Game.GridSize,
		State:      r.state,
		Players:    players,
		Status:     r.Resolver.Status(),
		CreatedAt:  r.CreatedAt,
		LastActive: r.lastActive,
	}
}
