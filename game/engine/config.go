package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game preset for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if !config.Strategy.Valid() {
		return fmt.Errorf("config validation: strategy must be one of relay, fleet, choice, got %q", config.Strategy)
	}
	if !config.Strategy.Spatial() {
		return nil
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate fleet
	if len(config.Fleet) == 0 {
		return fmt.Errorf("config validation: fleet must contain at least one vessel")
	}
	for i, length := range config.Fleet {
		if length < 1 || length > config.GridSize {
			return fmt.Errorf("config validation: fleet[%d] length must be between 1 and %d, got %d", i, config.GridSize, length)
		}
	}

	// Each vessel needs its own cells plus a one-cell margin, so a fleet
	// covering more than half the grid can never be placed.
	if cells := config.FleetCells(); cells*2 > config.GridSize*config.GridSize {
		return fmt.Errorf("config validation: fleet covers %d cells, too many for a %dx%d grid", cells, config.GridSize, config.GridSize)
	}

	return nil
}

// ParseGameConfig decodes and validates a preset. The format is chosen by
// file extension: .yaml/.yml use YAML, everything else JSON.
func ParseGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game preset from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data, filepath.Ext(filename))
}
