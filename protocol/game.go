package protocol

import (
	"encoding/json"
	"fmt"
)

// Game sub-commands, carried under data.type of a "game" envelope.
const (
	GameCmdChat          = "chat"
	GameCmdGetStatus     = "get_status"
	GameCmdTakeSeat      = "take_seat"
	GameCmdStart         = "start"
	GameCmdAction        = "action"
	GameCmdChangeOptions = "change_options"

	// server -> client only
	GameCmdStatus = "status"
	GameCmdError  = "error"
)

// GameMessage is the payload of a "game" envelope in either direction.
// Which fields are meaningful depends on Type:
//
//	status: Status (full snapshot) and optionally Personal
//	chat:   Text, plus Sender on the server -> client echo
//	error:  Error and Message
//	take_seat, action, change_options: Data
type GameMessage struct {
	Type     string          `json:"type"`
	Status   json.RawMessage `json:"status,omitempty"`
	Personal json.RawMessage `json:"personal,omitempty"`
	Sender   *UserInfo       `json:"sender,omitempty"`
	Text     string          `json:"text,omitempty"`
	Error    string          `json:"error,omitempty"`
	Message  string          `json:"message,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// ParseGameMessage decodes and validates the payload of a "game" envelope.
func ParseGameMessage(data json.RawMessage) (GameMessage, error) {
	if len(data) == 0 {
		return GameMessage{}, fmt.Errorf("game envelope has no data")
	}
	var msg GameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return GameMessage{}, fmt.Errorf("parse game payload: %w", err)
	}
	if msg.Type == "" {
		return GameMessage{}, fmt.Errorf("game payload has no type")
	}
	return msg, nil
}

func gameEnvelope(msg GameMessage) Envelope {
	data, _ := json.Marshal(msg)
	return Envelope{Type: TypeGame, Data: data}
}

// NewGameChat sends a chat line to the current room.
func NewGameChat(text string) Envelope {
	return gameEnvelope(GameMessage{Type: GameCmdChat, Text: text})
}

// NewGetStatus asks the room's game engine for a full snapshot. The server
// does not push an initial snapshot unprompted, so every game module sends
// this on activation.
func NewGetStatus() Envelope {
	return gameEnvelope(GameMessage{Type: GameCmdGetStatus})
}

// NewTakeSeat claims the seat with the given index.
func NewTakeSeat(seat int) Envelope {
	data, _ := json.Marshal(seat)
	return gameEnvelope(GameMessage{Type: GameCmdTakeSeat, Data: data})
}

// NewStartGame asks the engine to start the game with the current seats.
func NewStartGame() Envelope {
	return gameEnvelope(GameMessage{Type: GameCmdStart})
}

// NewGameAction wraps a game-specific command payload. The client never
// interprets the payload; legality is the server's business.
func NewGameAction(action any) (Envelope, error) {
	data, err := json.Marshal(action)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode game action: %w", err)
	}
	return gameEnvelope(GameMessage{Type: GameCmdAction, Data: data}), nil
}

// NewChangeOptions wraps a game-specific settings payload.
func NewChangeOptions(options any) (Envelope, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode game options: %w", err)
	}
	return gameEnvelope(GameMessage{Type: GameCmdChangeOptions, Data: data}), nil
}
