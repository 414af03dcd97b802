package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/wricardo/duelrooms/game/config"
	"github.com/wricardo/duelrooms/game/engine"
	"github.com/wricardo/duelrooms/game/room"
)

// ListRooms returns snapshots of the live rooms matching the filter
func (c *Coordinator) ListRooms(ctx context.Context, filter RoomFilter) ([]room.Info, error) {
	rooms := c.rooms.List()

	infos := make([]room.Info, 0, len(rooms))
	for _, rm := range rooms {
		info := rm.Info()
		if info.State == room.StateClosed {
			continue
		}
		if filter.State != "" && info.State != filter.State {
			continue
		}
		if filter.Strategy != "" && info.Strategy != filter.Strategy {
			continue
		}
		infos = append(infos, info)
	}

	desc := filter.Order != "asc"
	sort.Slice(infos, func(i, j int) bool {
		a, b := infos[i].CreatedAt, infos[j].CreatedAt
		if filter.SortBy == "active" {
			a, b = infos[i].LastActive, infos[j].LastActive
		}
		if a.Equal(b) {
			return infos[i].ID < infos[j].ID
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})

	if filter.Limit > 0 && len(infos) > filter.Limit {
		infos = infos[:filter.Limit]
	}
	return infos, nil
}

// GetRoom returns a snapshot of one room
func (c *Coordinator) GetRoom(ctx context.Context, roomID string) (*room.Info, error) {
	rm, err := c.rooms.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", roomID, err)
	}
	info := rm.Info()
	if info.State == room.StateClosed {
		return nil, fmt.Errorf("room %s: %w", roomID, room.ErrRoomNotFound)
	}
	return &info, nil
}

// Stats summarizes rooms and connections
func (c *Coordinator) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByStrategy:   make(map[engine.Strategy]int),
		RoomsCreated: c.roomsCreated.Load(),
		GamesWon:     c.gamesWon.Load(),
		StartedAt:    c.startedAt,
	}

	for _, rm := range c.rooms.List() {
		info := rm.Info()
		switch info.State {
		case room.StateWaiting:
			stats.Waiting++
		case room.StateActive:
			stats.Active++
		default:
			continue
		}
		stats.Rooms++
		stats.ByStrategy[info.Strategy]++
	}

	c.mu.Lock()
	stats.Connections = len(c.sessions)
	for _, s := range c.sessions {
		if s.room != "" {
			stats.Seated++
		}
	}
	c.mu.Unlock()

	return stats, nil
}

// ListConfigs returns the available presets
func (c *Coordinator) ListConfigs(ctx context.Context) ([]*config.Info, error) {
	return c.configs.ListConfigs()
}

// LoadConfig returns one preset by id
func (c *Coordinator) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return c.configs.LoadConfig(configName)
}
