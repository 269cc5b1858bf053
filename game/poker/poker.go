// Package poker types the Texas Hold'em snapshots pushed by the server and
// wraps them in a game module. All state here is a verbatim echo of the
// last server snapshot; the client never computes betting legality, pot
// math, or hand ranks.
package poker

import (
	"encoding/json"
	"log"

	"github.com/AlexGrek/multigamews-client/game"
	"github.com/AlexGrek/multigamews-client/protocol"
)

// Stages of a poker room.
const (
	StageSetup   = "setup"
	StagePlaying = "playing"
)

// Action is one poker action, either expected from or taken by a player.
type Action struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

// Seat is one occupied seat in the setup stage.
type Seat struct {
	WebsocketUID string            `json:"websocket_uid"`
	Info         protocol.UserInfo `json:"info"`
	AI           bool              `json:"ai"`
}

// Setup describes the table before and between hands.
type Setup struct {
	GameName string  `json:"gameName"`
	Seats    []*Seat `json:"seats"`
	WinDelay int     `json:"windelay"`
}

// Player is one player's public state during a hand. Cards are only
// revealed for the viewer's own seat or at showdown.
type Player struct {
	Stack      int      `json:"stack"`
	Bet        *int     `json:"bet"`
	Cards      []string `json:"cards"`
	Folded     bool     `json:"folded"`
	LastAction *Action  `json:"lastAction"`
	IsAllIn    bool     `json:"isAllIn"`
}

// Playing is the in-hand state.
type Playing struct {
	Players    []*Player `json:"players"`
	Dealer     int       `json:"dealer"`
	Turn       int       `json:"turn"`
	Table      []string  `json:"table"`
	Bank       int       `json:"bank"`
	SmallBlind int       `json:"small_blind"`
	TotalTurns int       `json:"total_turns"`
}

// Snapshot is the complete public state of a poker room.
type Snapshot struct {
	Stage   string   `json:"stage"`
	Setup   Setup    `json:"setup"`
	Playing *Playing `json:"playing"`
}

// Personal is the viewer-specific side channel: own seat and the actions
// the engine currently expects from the viewer. It is never derivable from
// the public snapshot.
type Personal struct {
	WebsocketUID    string   `json:"websocket_uid"`
	Seat            int      `json:"seat"`
	ExpectedActions []Action `json:"expected_actions"`
}

// Module displays a poker room.
type Module struct {
	state game.Reconciler[Snapshot, Personal]
	chat  *game.ChatLog
}

// New creates an unmounted poker module.
func New() *Module {
	return &Module{chat: game.NewChatLog(0)}
}

// Kind implements game.Module.
func (m *Module) Kind() string { return protocol.GamePoker }

// Mount implements game.Module.
func (m *Module) Mount(reg game.Registrar) {
	game.Mount(reg, m.Kind(), func(status, personal json.RawMessage) {
		if err := m.state.ApplyStatus(status, personal); err != nil {
			// Keep the previous snapshot; the next push replaces it anyway.
			log.Printf("Rejecting poker snapshot: %v", err)
		}
	}, m.chat)
}

// Snapshot returns the last poker snapshot.
func (m *Module) Snapshot() (Snapshot, bool) { return m.state.Snapshot() }

// Personal returns the viewer's side-channel data.
func (m *Module) Personal() (Personal, bool) { return m.state.Personal() }

// RawSnapshot implements game.Module.
func (m *Module) RawSnapshot() (json.RawMessage, bool) { return m.state.RawSnapshot() }

// Chat implements game.Module.
func (m *Module) Chat() *game.ChatLog { return m.chat }
