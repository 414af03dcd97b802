package protocol

import "fmt"

// Code identifies a rejection reason on the wire
type Code string

const (
	CodeInvalidFormat     Code = "invalid_format"
	CodeUnknownType       Code = "unknown_type"
	CodeNotInRoom         Code = "not_in_room"
	CodeAlreadyInRoom     Code = "already_in_room"
	CodeRoomFull          Code = "room_full"
	CodeRoomNotFound      Code = "room_not_found"
	CodeUnknownGame       Code = "unknown_game"
	CodeOpponentMissing   Code = "opponent_missing"
	CodeUnsupportedMove   Code = "unsupported_move"
	CodeInvalidCoordinate Code = "invalid_coordinate"
	CodeDuplicateAttack   Code = "duplicate_attack"
	CodeUnknownAttack     Code = "unknown_attack"
	CodeInvalidChoice     Code = "invalid_choice"
	CodeInvalidPlacement  Code = "invalid_placement"
	CodeNotReady          Code = "not_ready"
	CodeNotYourTurn       Code = "not_your_turn"
	CodeInternal          Code = "internal_error"
)

// Error is a rejection that is reported to the client
type Error struct {
	Code    Code
	Message string
}

// Errorf creates an Error with a formatted message
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Event converts the error into its wire form
func (e *Error) Event() ErrorEvent {
	return ErrorEvent{Type: EventError, Code: e.Code, Message: e.Message}
}
