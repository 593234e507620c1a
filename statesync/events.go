// statesync/events.go
package statesync

import (
	"encoding/json"
	"time"
)

const (
	EventGameStateUpdate = "game_state_update"
	EventHandUpdate      = "hand_update"
	EventPlayerJoined    = "player_joined"
	EventDealerSelection = "dealer_selection_start"
	EventErrorMessage    = "error_message"
)

// Event 是状态同步通道上的一条命名事件，Payload 保持原始 JSON
type Event struct {
	Name       string
	Payload    json.RawMessage
	ReceivedAt time.Time
}

// Qualifying reports whether the event may trigger scene initialization.
func (e Event) Qualifying() bool {
	return e.Name == EventGameStateUpdate
}

type Tile struct {
	Suit  string `json:"suit"`
	Value int    `json:"value"`
	IsRed bool   `json:"is_red"`
}

type PlayerState struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Wind     int    `json:"wind"`
	Discards []Tile `json:"discards"`
	IsRiichi bool   `json:"is_riichi"`
}

// GameState is the public table state carried by game_state_update. The
// layout engine does not consume it yet; it is decoded for logging.
type GameState struct {
	GameStarted     bool          `json:"game_started"`
	RoundWind       string        `json:"round_wind"`
	RoundNumber     int           `json:"round_number"`
	RemainingTiles  int           `json:"remaining_tiles"`
	Honba           int           `json:"honba"`
	Pot             int           `json:"pot"`
	Dora            []Tile        `json:"dora"`
	Players         []PlayerState `json:"players"`
	TurnPlayerIndex int           `json:"turn_player_index"`
	TurnPlayerName  string        `json:"turn_player_name"`
}

type HandUpdate struct {
	Hand      []Tile `json:"hand"`
	DrawnTile *Tile  `json:"drawn_tile,omitempty"`
	MyTurn    bool   `json:"my_turn"`
}

type PlayerJoined struct {
	Username       string `json:"username"`
	CurrentPlayers int    `json:"current_players"`
}

type DiceRoll struct {
	D1    int `json:"d1"`
	D2    int `json:"d2"`
	Total int `json:"total"`
}

type DealerSelection struct {
	Rolls       []DiceRoll `json:"rolls"`
	DealerIndex int        `json:"dealer_index"`
	DealerName  string     `json:"dealer_name"`
}

type ErrorMessage struct {
	Msg string `json:"msg"`
}

// JoinGame is sent by the client when it enters the lobby.
type JoinGame struct {
	Username string `json:"username"`
}
