package network

import "fmt"

const (
	MsgTypeHeartbeat       = 1
	MsgTypeJoinGame        = 101
	MsgTypeAddBots         = 102
	MsgTypeStartGame       = 103
	MsgTypeDiscardTile     = 201
	MsgTypePlayerJoined    = 301
	MsgTypeDealerSelection = 302
	MsgTypeGameStateUpdate = 304
	MsgTypeHandUpdate      = 305
	MsgTypeErrorMessage    = 306
)

// 消息 ID 与事件名的对应关系
var eventNames = map[uint16]string{
	MsgTypeHeartbeat:       "heartbeat",
	MsgTypeJoinGame:        "join_game",
	MsgTypeAddBots:         "add_bots",
	MsgTypeStartGame:       "start_manual_game",
	MsgTypeDiscardTile:     "discard_tile",
	MsgTypePlayerJoined:    "player_joined",
	MsgTypeDealerSelection: "dealer_selection_start",
	MsgTypeGameStateUpdate: "game_state_update",
	MsgTypeHandUpdate:      "hand_update",
	MsgTypeErrorMessage:    "error_message",
}

// EventName returns the named event carried by a message id.
func EventName(msgID uint16) string {
	if name, ok := eventNames[msgID]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", msgID)
}

// MsgID is the inverse of EventName.
func MsgID(event string) (uint16, bool) {
	for id, name := range eventNames {
		if name == event {
			return id, true
		}
	}
	return 0, false
}
