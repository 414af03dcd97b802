package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message types
const (
	TypeCreate = "create"
	TypeJoin   = "join"
	TypeAttack = "attack"
	TypeMove   = "move"
	TypePlace  = "place"
	TypeReport = "report"
	TypeLeave  = "leave"
	TypePing   = "ping"
)

// Slot labels, in seating order
const (
	PlayerOne = "player1"
	PlayerTwo = "player2"
)

// ErrInvalidFormat is returned when a frame is not a JSON object with a type
var ErrInvalidFormat = errors.New("invalid message format")

// Envelope is an inbound client message. Fields are optional and read
// according to Type.
type Envelope struct {
	Type    string       `json:"type"`
	Room    string       `json:"room,omitempty"`
	Game    string       `json:"game,omitempty"`
	Coord   string       `json:"coord,omitempty"`
	Choice  string       `json:"choice,omitempty"`
	Hit     *bool        `json:"hit,omitempty"`
	Vessels []VesselSpec `json:"vessels,omitempty"`
}

// VesselSpec is one vessel in a place message
type VesselSpec struct {
	Coord       string `json:"coord"`
	Orientation string `json:"orientation"`
	Length      int    `json:"length"`
}

// Decode parses a raw frame into an envelope
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidFormat)
	}
	return &env, nil
}

// Known reports whether t is an inbound message type the router handles
func Known(t string) bool {
	switch t {
	case TypeCreate, TypeJoin, TypeAttack, TypeMove, TypePlace, TypeReport, TypeLeave, TypePing:
		return true
	}
	return false
}
