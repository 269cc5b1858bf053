package protocol

import (
	"encoding/json"
	"fmt"
)

// UserInfo is a user profile as the server represents it. Gender is 0 for
// unknown, -1 for male, 1 for female.
type UserInfo struct {
	Name   string `json:"name"`
	Gender int    `json:"gender"`
	Avatar string `json:"avatar,omitempty"`
}

// RoomStatus describes the room a session currently occupies.
type RoomStatus struct {
	Game  string     `json:"game"`
	Users []UserInfo `json:"users"`
}

// UserStatus is the payload of a "status" push. The server is authoritative
// and may push it unsolicited at any time; Room is nil when the session is
// in the lobby.
type UserStatus struct {
	Info       UserInfo    `json:"info"`
	Room       *string     `json:"room"`
	GameStatus *RoomStatus `json:"game_status"`
}

// RoomInfo is one entry of the lobby room list.
type RoomInfo struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
	Game      string `json:"game"`
}

// ParseUserStatus decodes and validates the payload of a "status" frame.
func ParseUserStatus(data json.RawMessage) (UserStatus, error) {
	var status UserStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return UserStatus{}, fmt.Errorf("parse status payload: %w", err)
	}
	if status.Info.Name == "" {
		return UserStatus{}, fmt.Errorf("status payload has no user name")
	}
	if status.Room != nil && status.GameStatus == nil {
		return UserStatus{}, fmt.Errorf("status payload names room %q but carries no game_status", *status.Room)
	}
	return status, nil
}

// ParseRoomList decodes the payload of a "rooms" frame.
func ParseRoomList(data json.RawMessage) ([]RoomInfo, error) {
	var rooms []RoomInfo
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("parse room list: %w", err)
	}
	return rooms, nil
}

// ParseUserList decodes the payload of a "user_list" push, sent to room
// members whenever the room's membership changes.
func ParseUserList(data json.RawMessage) ([]UserInfo, error) {
	var users []UserInfo
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse user list: %w", err)
	}
	return users, nil
}
