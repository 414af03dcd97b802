// Package mcp provides the Model Context Protocol interface of duelrooms.
//
// The mcp package implements:
//   - An MCP server whose tools proxy the read-only REST API
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
//   - list_rooms: List rooms filtered by state or strategy
//   - get_room: Room details with players and contest status
//   - server_stats: Room, connection and game counters
//   - list_configs: Available game presets
//   - get_config: One preset with grid and fleet
//   - protocol_reference: WebSocket message reference for building a client
//
// Gameplay itself only happens over the WebSocket; an agent that wants to
// play reads protocol_reference and connects to /ws like any other client.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	client.ServeStdio()
//
//	// HTTP mode
//	server.Handle("/mcp", client.HTTPHandler())
package mcp
