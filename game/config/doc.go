// Package config provides game preset management for duelrooms.
//
// The config package handles:
//   - Loading presets from JSON or YAML files
//   - Preset validation through the engine package
//   - Default preset management
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets live in the configs directory, one file per preset. The file name
// without extension is the preset id that clients send in a create message.
// Each preset defines:
//   - strategy: relay, fleet or choice
//   - grid_size: edge length of the square grid (spatial strategies)
//   - fleet: vessel lengths (spatial strategies)
//
// Example (configs/fleet.yaml):
//
//	name: Fleet
//	description: Server-judged naval duel
//	strategy: fleet
//	grid_size: 10
//	fleet: [4, 3, 3, 2, 2, 2, 1, 1, 1, 1]
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific preset
//	gameConfig, err := manager.LoadConfig("rps")
//
//	// Get default preset
//	defaultConfig := manager.GetDefault()
//
//	// List available presets
//	presets, err := manager.ListConfigs()
//
// When the directory holds no classic preset and no other valid preset, the
// built-in classic relay preset becomes the default.
package config
