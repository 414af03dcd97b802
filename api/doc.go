// Package api provides the HTTP surface of duelrooms.
//
// The api package implements:
//   - A liveness probe
//   - Read-only room listing, lookup and server statistics
//   - QR codes and join hints for room share links
//   - Game preset listing
//   - The WebSocket upgrade endpoint
//
// Endpoints:
//
//   - GET /status - Liveness probe
//   - GET /api/rooms - List rooms (state, strategy, sort, order, limit)
//   - GET /api/rooms/{id} - Get one room
//   - GET /api/rooms/{id}/qr - PNG QR code of the share link (size)
//   - GET /api/stats - Room and connection counters
//   - GET /api/configs - List presets
//   - GET /api/configs/{name} - Get one preset
//   - GET /room/{id} - Join hint for a share link
//   - GET /ws - WebSocket upgrade
//
// Rooms are created and played only over the WebSocket; the REST surface
// never changes room state and never exposes connection ids.
//
// Usage:
//
//	server := api.NewServer(coordinator, hub, api.WithPublicURL(publicURL))
//	server.Handle("/mcp", mcpHandler)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{"error": "room abcd1234: room not found"}
package api
