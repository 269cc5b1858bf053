// Package mcp exposes a live client session over the Model Context
// Protocol, so an AI agent can sit at the table like any other player.
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - session_status: connection state, profile, and current room
//   - list_rooms: lobby room list
//   - create_room: create and join a room of a given game kind
//   - enter_room: join a named room
//   - leave_room: return to the lobby
//   - send_chat: send a chat line to the current room
//   - game_snapshot: the last full snapshot of the active game
//   - take_seat: claim a seat at the table
//   - start_game: ask the engine to start
//   - game_action: forward a game-specific action payload
//
// All state returned by these tools is the last word of the server; the
// client never computes game legality. After a state-affecting tool call
// the agent should re-read game_snapshot, since effects are confirmed only
// by the next server push.
package mcp
