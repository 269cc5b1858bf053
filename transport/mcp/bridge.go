package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AlexGrek/multigamews-client/session"
)

// Bridge exposes one client session as a set of MCP tools.
type Bridge struct {
	session   *session.Session
	mcpServer *server.MCPServer
}

// NewBridge creates an MCP bridge over an already-dialed session.
func NewBridge(s *session.Session) *Bridge {
	b := &Bridge{session: s}
	b.initMCPServer()
	return b
}

// GetMCPServer returns the underlying MCP server for stdio or HTTP serving.
func (b *Bridge) GetMCPServer() *server.MCPServer {
	return b.mcpServer
}

// initMCPServer initializes the MCP server with all tools
func (b *Bridge) initMCPServer() {
	b.mcpServer = server.NewMCPServer(
		"Multigame WS Client",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Multigame WS Client - MCP Interface

This bridge drives one live connection to a multigamews server. The server
is the sole source of truth: every command is fire-and-forget, and its
effect shows up only in the next pushed snapshot.

TYPICAL FLOW:
1. session_status / list_rooms to see where you are
2. create_room or enter_room to sit down somewhere
3. take_seat, then start_game once enough seats are taken
4. game_snapshot after every action to see the current state
5. game_action with the payload the game expects (e.g. {"action":"bet","amount":100})

NOTE: after enter_room or create_room, confirm with session_status - the
room changes only once the server acknowledges it.`),
	)

	// Register all tools
	b.registerTools()
}

// registerTools registers all MCP tools
func (b *Bridge) registerTools() {
	b.mcpServer.AddTool(mcp.Tool{
		Name:        "session_status",
		Description: "Get connection state, profile, and current room",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleSessionStatus)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List the rooms currently open in the lobby",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleListRooms)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a room of the given game kind and join it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Room name",
				},
				"game": map[string]interface{}{
					"type":        "string",
					"description": "Game kind: chat, poker, or dixit",
				},
			},
			Required: []string{"name", "game"},
		},
	}, b.handleCreateRoom)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "enter_room",
		Description: "Join a named room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Room name to join",
				},
			},
			Required: []string{"name"},
		},
	}, b.handleEnterRoom)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_room",
		Description: "Leave the current room and return to the lobby",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleLeaveRoom)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "send_chat",
		Description: "Send a chat line to the current room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Chat text to send",
				},
			},
			Required: []string{"text"},
		},
	}, b.handleSendChat)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "game_snapshot",
		Description: "Get the last full snapshot of the active game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleGameSnapshot)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "take_seat",
		Description: "Claim a seat at the current room's table",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seat": map[string]interface{}{
					"type":        "number",
					"description": "Seat index to claim",
				},
			},
			Required: []string{"seat"},
		},
	}, b.handleTakeSeat)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Ask the engine to start the game with the current seats",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, b.handleStartGame)

	b.mcpServer.AddTool(mcp.Tool{
		Name:        "game_action",
		Description: "Forward a game-specific action payload (JSON object)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"action": map[string]interface{}{
					"type":        "object",
					"description": "Game-specific action payload, passed through verbatim",
				},
			},
			Required: []string{"action"},
		},
	}, b.handleGameAction)
}

func (b *Bridge) handleSessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile := b.session.Profile()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Connection: %s\n", b.session.Status())
	fmt.Fprintf(&sb, "Profile: %s (gender=%d avatar=%q)\n", profile.Name, profile.Gender, profile.Avatar)
	if room := b.session.Room(); room != nil {
		fmt.Fprintf(&sb, "Room: %s (game: %s)\n", *room, b.session.RoomGame())
		for _, user := range b.session.RoomUsers() {
			fmt.Fprintf(&sb, "  • %s\n", user.Name)
		}
	} else {
		sb.WriteString("Room: none (in lobby)\n")
	}
	if lastErr := b.session.LastError(); lastErr != "" {
		fmt.Fprintf(&sb, "Last server error: %s\n", lastErr)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (b *Bridge) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rooms := b.session.Rooms()
	if len(rooms) == 0 {
		return mcp.NewToolResultText("No rooms are open."), nil
	}

	result := "Open rooms:\n\n"
	for _, room := range rooms {
		result += fmt.Sprintf("• %s\n  Game: %s, Users: %d\n\n", room.Name, room.Game, room.UserCount)
	}
	return mcp.NewToolResultText(result), nil
}

func (b *Bridge) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)
	gameKind, _ := args["game"].(string)

	if err := b.session.CreateRoom(name, gameKind); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Create command for room %q (%s) sent. Confirm with session_status.", name, gameKind)), nil
}

func (b *Bridge) handleEnterRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)

	if err := b.session.EnterRoom(name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Enter command for room %q sent. Confirm with session_status.", name)), nil
}

func (b *Bridge) handleLeaveRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := b.session.LeaveRoom(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Leave command sent. Confirm with session_status."), nil
}

func (b *Bridge) handleSendChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	text, _ := args["text"].(string)

	if err := b.session.SendChat(text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Chat line sent."), nil
}

func (b *Bridge) handleGameSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	module := b.session.Module()
	if module == nil {
		return mcp.NewToolResultError("no game module is active; enter a room first"), nil
	}

	snapshot, ok := module.RawSnapshot()
	if !ok {
		return mcp.NewToolResultError("no snapshot received yet; the server answers get_status shortly after room entry"), nil
	}

	var pretty map[string]interface{}
	if err := json.Unmarshal(snapshot, &pretty); err != nil {
		return mcp.NewToolResultText(string(snapshot)), nil
	}
	formatted, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(string(snapshot)), nil
	}

	result := fmt.Sprintf("Game: %s\n\n%s", module.Kind(), formatted)
	return mcp.NewToolResultText(result), nil
}

func (b *Bridge) handleTakeSeat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	seat, ok := args["seat"].(float64)
	if !ok {
		return mcp.NewToolResultError("seat must be a number"), nil
	}

	if err := b.session.TakeSeat(int(seat)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Seat %d requested. Confirm with game_snapshot.", int(seat))), nil
}

func (b *Bridge) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := b.session.StartGame(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Start command sent. Confirm with game_snapshot."), nil
}

func (b *Bridge) handleGameAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	action, ok := args["action"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("action must be a JSON object"), nil
	}

	if err := b.session.SendAction(action); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Action sent. Confirm with game_snapshot."), nil
}
