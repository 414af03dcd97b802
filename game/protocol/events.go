package protocol

// Outbound event types
const (
	EventConnected       = "connected"
	EventRoomCreated     = "room_created"
	EventRoomJoined      = "room_joined"
	EventPlayerJoined    = "player_joined"
	EventGameStart       = "game_start"
	EventPlayerLeft      = "player_left"
	EventLeftRoom        = "left_room"
	EventAttackRelayed   = "attack_relayed"
	EventAttackConfirmed = "attack_confirmed"
	EventAttackResult    = "attack_result"
	EventVesselsPlaced   = "vessels_placed"
	EventTurn            = "turn"
	EventMoveReceived    = "move_received"
	EventRoundResult     = "round_result"
	EventRoundReset      = "round_reset"
	EventGameWon         = "game_won"
	EventPong            = "pong"
	EventError           = "error"
)

// Connected greets a freshly opened connection
type Connected struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomInfo describes the room a player was seated in
type RoomInfo struct {
	Type       string `json:"type"`
	Room       string `json:"room"`
	Player     string `json:"player"`
	Game       string `json:"game"`
	Strategy   string `json:"strategy"`
	GridSize   int    `json:"grid_size,omitempty"`
	Fleet      []int  `json:"fleet,omitempty"`
	FleetCells int    `json:"fleet_cells,omitempty"`
}

// PlayerEvent announces something about one player of a room
type PlayerEvent struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Player  string `json:"player"`
	Players int    `json:"players,omitempty"`
}

// RoomEvent carries only the room id
type RoomEvent struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// AttackRelayed tells the opponent which cell was fired at
type AttackRelayed struct {
	Type  string `json:"type"`
	Coord string `json:"coord"`
	From  string `json:"from"`
}

// AttackConfirmed tells the attacker the shot was forwarded
type AttackConfirmed struct {
	Type  string `json:"type"`
	Coord string `json:"coord"`
}

// AttackResult reports a resolved shot to both players
type AttackResult struct {
	Type     string   `json:"type"`
	Coord    string   `json:"coord"`
	By       string   `json:"by"`
	Hit      bool     `json:"hit"`
	Sunk     bool     `json:"sunk,omitempty"`
	AutoMiss []string `json:"auto_miss,omitempty"`
	Hits     int      `json:"hits"`
}

// PlayerNotice names a player without further payload
type PlayerNotice struct {
	Type   string `json:"type"`
	Player string `json:"player"`
}

// RoundResult reports a decided simultaneous round
type RoundResult struct {
	Type    string            `json:"type"`
	Round   int               `json:"round"`
	Winner  string            `json:"winner,omitempty"`
	Draw    bool              `json:"draw"`
	Choices map[string]string `json:"choices"`
}

// RoundReset announces that a new round accepts moves
type RoundReset struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
}

// GameWon ends a spatial game
type GameWon struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	Winner string `json:"winner"`
}

// Pong answers a ping
type Pong struct {
	Type string `json:"type"`
}

// ErrorEvent is sent to the originating connection when a message is rejected
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}
