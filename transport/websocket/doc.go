// Package websocket provides the WebSocket transport for duelrooms.
//
// The websocket package implements:
//   - Connection upgrade and a unique id per connection
//   - A read goroutine that hands frames to a Handler in arrival order
//   - A write goroutine with a bounded queue, one JSON message per frame
//   - Keepalive pings and read deadlines
//
// Architecture:
//
// The Hub maps connection ids to clients. It does not know about rooms;
// the Handler (the room coordinator) decides who receives what and calls
// Send, which never blocks. A connection whose queue fills up is closed,
// and its read goroutine reports the disconnect to the Handler.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	hub.SetHandler(coordinator)
//	router.HandleFunc("/ws", hub.ServeWS)
//	defer hub.Stop()
package websocket
