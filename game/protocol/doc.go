// Package protocol defines the JSON messages exchanged over a room connection.
//
// Every WebSocket frame carries exactly one JSON object with a "type" field.
// Inbound frames decode into an Envelope; outbound events are small structs
// whose Type field is one of the Event constants. Rejections are sent as an
// ErrorEvent with a stable Code.
//
// Inbound:
//
//	{"type":"create","game":"rps"}
//	{"type":"join","room":"3f9a1c2e"}
//	{"type":"attack","coord":"B7"}
//	{"type":"report","coord":"B7","hit":true}
//	{"type":"place","vessels":[{"coord":"A1","orientation":"horizontal","length":4}]}
//	{"type":"move","choice":"rock"}
//	{"type":"leave"}
//
// Outbound:
//
//	{"type":"room_created","room":"3f9a1c2e","player":"player1","game":"classic","strategy":"relay","grid_size":10}
//	{"type":"attack_relayed","coord":"B7","from":"player1"}
//	{"type":"error","code":"room_full","message":"room 3f9a1c2e already has two players"}
package protocol
