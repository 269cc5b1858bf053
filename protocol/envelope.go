// Package protocol defines the wire format spoken with the multigamews
// server: one UTF-8 JSON document per WebSocket text frame.
//
// Every frame is an Envelope. Two addressing schemes exist side by side:
//
//   - type dispatch: the "type" field selects a handler ("status", "rooms",
//     "game", ...)
//   - request correlation: replies to client-issued lookups arrive as
//     type "response" with the "request" field naming the lookup being
//     answered; there are no per-call IDs.
//
// Field placement convention: init-family fields ("command", "name",
// "game") live at the top level of the envelope, game-family payloads live
// entirely under "data". The server historically mixed the two; this client
// treats the split as a fixed per-family rule.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types exchanged over the connection.
const (
	TypeInit     = "init"      // client -> server control commands
	TypeGame     = "game"      // both directions, payload under "data"
	TypeRooms    = "rooms"     // server -> client room list
	TypeStatus   = "status"    // server -> client session status
	TypeUserList = "user_list" // server -> client room membership
	TypeResponse = "response"  // server -> client request-correlated reply
	TypeError    = "error"     // server -> client failure report
)

// Init commands (sent under type "init").
const (
	CommandCreate      = "create"
	CommandEnter       = "enter"
	CommandList        = "list"
	CommandChangeInfo  = "change_info"
	CommandRequest     = "request"
	CommandGetUserInfo = "get_user_info"
)

// Game kinds known to the server.
const (
	GameChat  = "chat"
	GamePoker = "poker"
	GameDixit = "dixit"
)

// Envelope is one complete JSON message exchanged over the transport.
//
// Name is raw JSON so that the "enter" command can carry an explicit null,
// which the server reads as "leave the current room".
type Envelope struct {
	Type    string          `json:"type"`
	Command string          `json:"command,omitempty"`
	Request string          `json:"request,omitempty"`
	Name    json.RawMessage `json:"name,omitempty"`
	Game    string          `json:"game,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrMissingType marks a frame that parsed as JSON but carries no "type"
// field. Such frames are malformed and must be dropped without affecting
// the connection.
var ErrMissingType = errors.New("envelope has no type")

// Decode parses one inbound frame. It returns ErrMissingType for envelopes
// without a routing key; any other error means the frame was not valid JSON.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return env, ErrMissingType
	}
	return env, nil
}

// Encode serializes an envelope to the wire representation.
func Encode(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// RoomName extracts the top-level room name of an init-family envelope.
// The second result is false when the name is absent or null.
func (e Envelope) RoomName() (string, bool) {
	if len(e.Name) == 0 {
		return "", false
	}
	var name *string
	if err := json.Unmarshal(e.Name, &name); err != nil || name == nil {
		return "", false
	}
	return *name, true
}

func jsonString(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// NewCreateRoom asks the server to create a room of the given game kind.
// The server joins the creator to the new room on success.
func NewCreateRoom(name, game string) Envelope {
	return Envelope{Type: TypeInit, Command: CommandCreate, Name: jsonString(name), Game: game}
}

// NewEnterRoom asks the server to move this connection into the named room.
// Success is confirmed only by a later "status" push.
func NewEnterRoom(name string) Envelope {
	return Envelope{Type: TypeInit, Command: CommandEnter, Name: jsonString(name)}
}

// NewLeaveRoom is the explicit leave command: "enter" with a null name.
func NewLeaveRoom() Envelope {
	return Envelope{Type: TypeInit, Command: CommandEnter, Name: json.RawMessage("null")}
}

// NewListRooms re-requests the lobby room list.
func NewListRooms() Envelope {
	return Envelope{Type: TypeInit, Command: CommandList}
}

// NewGetUserInfo re-requests the session status push.
func NewGetUserInfo() Envelope {
	return Envelope{Type: TypeInit, Command: CommandGetUserInfo}
}

// NewChangeInfo updates the caller's profile on the server.
func NewChangeInfo(info UserInfo) (Envelope, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode profile: %w", err)
	}
	return Envelope{Type: TypeInit, Command: CommandChangeInfo, Data: data}, nil
}

// NewRequest asks for a named out-of-band resource (e.g. "avatar_list").
// The answer arrives later as a request-correlated reply under the same
// name; there is no per-call identifier and no timeout.
func NewRequest(name string) Envelope {
	return Envelope{Type: TypeInit, Command: CommandRequest, Data: jsonString(name)}
}
