package service

import (
	"context"
	"time"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/room"
)

// RoomService is the read-only view of the coordinator used by the HTTP and
// MCP surfaces
type RoomService interface {
	ListRooms(ctx context.Context, filter RoomFilter) ([]room.Info, error)
	GetRoom(ctx context.Context, roomID string) (*room.Info, error)
	Stats(ctx context.Context) (*Stats, error)

	ListConfigs(ctx context.Context) ([]*config.Info, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
}

// Sender enqueues a payload on a connection without blocking
type Sender interface {
	Send(connID string, payload []byte) error
}

// ConfigCatalog provides game presets
type ConfigCatalog interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*config.Info, error)
	GetDefault() *engine.GameConfig
}

// RoomFilter narrows and orders a room listing
type RoomFilter struct {
	State    room.State
	Strategy engine.Strategy
	// SortBy is "created" (default) or "active"
	SortBy string
	// Order is "asc" or "desc" (default)
	Order string
	Limit int
}

// Stats summarizes the coordinator
type Stats struct {
	Rooms        int                     `json:"rooms"`
	Waiting      int                     `json:"waiting"`
	Active       int                     `json:"active"`
	ByStrategy   map[engine.Strategy]int `json:"by_strategy"`
	Connections  int                     `json:"connections"`
	Seated       int                     `json:"seated"`
	RoomsCreated int64                   `json:"rooms_created"`
	GamesWon     int64                   `json:"games_won"`
	StartedAt    time.Time               `json:"started_at"`
}
