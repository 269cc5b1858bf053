package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AlexGrek/multigamews-client/session"
)

func newTestBridge() *Bridge {
	// A disconnected session: every fire-and-forget tool must fail
	// cleanly instead of hanging or panicking.
	return NewBridge(session.New("ws://localhost:1"))
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected content in the tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in the tool result")
	}
	return text.Text
}

func TestNewBridge(t *testing.T) {
	b := newTestBridge()
	if b == nil {
		t.Fatal("Expected a bridge")
	}
	if b.GetMCPServer() == nil {
		t.Fatal("Expected the MCP server to be initialized")
	}
}

func TestSessionStatusTool(t *testing.T) {
	b := newTestBridge()

	result, err := b.handleSessionStatus(context.Background(), callRequest("session_status", nil))
	if err != nil {
		t.Fatalf("session_status failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "closed") {
		t.Errorf("Expected the connection state in the output, got: %s", text)
	}
	if !strings.Contains(text, "lobby") {
		t.Errorf("Expected the lobby to be reported, got: %s", text)
	}
}

func TestListRoomsToolEmpty(t *testing.T) {
	b := newTestBridge()

	result, err := b.handleListRooms(context.Background(), callRequest("list_rooms", nil))
	if err != nil {
		t.Fatalf("list_rooms failed: %v", err)
	}
	if !strings.Contains(resultText(t, result), "No rooms") {
		t.Errorf("Expected an empty-lobby message, got: %s", resultText(t, result))
	}
}

func TestStateChangingToolsFailWhenDisconnected(t *testing.T) {
	b := newTestBridge()
	ctx := context.Background()

	calls := []struct {
		name string
		call func() (*mcp.CallToolResult, error)
	}{
		{"create_room", func() (*mcp.CallToolResult, error) {
			return b.handleCreateRoom(ctx, callRequest("create_room", map[string]interface{}{"name": "table1", "game": "poker"}))
		}},
		{"enter_room", func() (*mcp.CallToolResult, error) {
			return b.handleEnterRoom(ctx, callRequest("enter_room", map[string]interface{}{"name": "table1"}))
		}},
		{"leave_room", func() (*mcp.CallToolResult, error) {
			return b.handleLeaveRoom(ctx, callRequest("leave_room", nil))
		}},
		{"send_chat", func() (*mcp.CallToolResult, error) {
			return b.handleSendChat(ctx, callRequest("send_chat", map[string]interface{}{"text": "hello"}))
		}},
		{"take_seat", func() (*mcp.CallToolResult, error) {
			return b.handleTakeSeat(ctx, callRequest("take_seat", map[string]interface{}{"seat": float64(1)}))
		}},
		{"start_game", func() (*mcp.CallToolResult, error) {
			return b.handleStartGame(ctx, callRequest("start_game", nil))
		}},
		{"game_action", func() (*mcp.CallToolResult, error) {
			return b.handleGameAction(ctx, callRequest("game_action", map[string]interface{}{
				"action": map[string]interface{}{"action": "fold"},
			}))
		}},
	}

	for _, tc := range calls {
		result, err := tc.call()
		if err != nil {
			t.Errorf("%s: handlers report failures as tool errors, not Go errors, got %v", tc.name, err)
			continue
		}
		if result == nil || !result.IsError {
			t.Errorf("%s: expected a tool error while disconnected", tc.name)
		}
	}
}

func TestGameSnapshotToolWithoutModule(t *testing.T) {
	b := newTestBridge()

	result, err := b.handleGameSnapshot(context.Background(), callRequest("game_snapshot", nil))
	if err != nil {
		t.Fatalf("game_snapshot failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error without an active module")
	}
}

func TestTakeSeatToolRejectsBadArguments(t *testing.T) {
	b := newTestBridge()

	result, err := b.handleTakeSeat(context.Background(), callRequest("take_seat", map[string]interface{}{"seat": "front row"}))
	if err != nil {
		t.Fatalf("take_seat failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error for a non-numeric seat")
	}
}

func TestGameActionToolRejectsBadArguments(t *testing.T) {
	b := newTestBridge()

	result, err := b.handleGameAction(context.Background(), callRequest("game_action", map[string]interface{}{"action": "fold"}))
	if err != nil {
		t.Fatalf("game_action failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error for a non-object action")
	}
}
