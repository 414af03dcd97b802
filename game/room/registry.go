package room

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MaxIDAttempts bounds how many ids Create tries before giving up
const MaxIDAttempts = 5

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrIDExhausted  = errors.New("failed to create unique room id")
)

// IDGenerator produces candidate room ids
type IDGenerator func() string

// NewID returns the first eight characters of a random UUID
func NewID() string {
	return uuid.NewString()[:8]
}

// Registry maps room ids to live rooms. The registry lock is never held
// while a room lock is acquired.
type Registry struct {
	rooms map[string]*Room
	newID IDGenerator
	mu    sync.RWMutex
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithIDGenerator replaces the default id generator
func WithIDGenerator(gen IDGenerator) RegistryOption {
	return func(r *Registry) {
		r.newID = gen
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms: make(map[string]*Room),
		newID: NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create picks an unused id, builds the room and registers it. Concurrent
// calls are serialized so no two rooms share an id.
func (r *Registry) Create(build func(id string) (*Room, error)) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < MaxIDAttempts; attempt++ {
		id := strings.ToLower(r.newID())
		if _, exists := r.rooms[id]; exists || id == "" {
			continue
		}

		room, err := build(id)
		if err != nil {
			return nil, err
		}
		r.rooms[id] = room
		return room, nil
	}
	return nil, ErrIDExhausted
}

// Get looks up a room by id, ignoring case
func (r *Registry) Get(id string) (*Room, error) {
	r.mu.RLock()
	room, exists := r.rooms[strings.ToLower(id)]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Join seats conn in the room and runs fn with the room lock still held
func (r *Registry) Join(id, conn string, fn func(*Room, *Slot)) error {
	room, err := r.Get(id)
	if err != nil {
		return err
	}

	room.Lock()
	defer room.Unlock()

	slot, err := room.Seat(conn)
	if errors.Is(err, ErrRoomClosed) {
		// Lost a race with the room's deletion
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	if fn != nil {
		fn(room, slot)
	}
	return nil
}

// Remove unregisters the room if the id still maps to it
func (r *Registry) Remove(room *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.rooms[room.ID]; exists && current == room {
		delete(r.rooms, room.ID)
		return true
	}
	return false
}

// List returns every registered room in no particular order
func (r *Registry) List() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Count returns the number of registered rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
