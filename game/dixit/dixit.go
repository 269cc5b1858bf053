// Package dixit types the Dixit snapshots pushed by the server and wraps
// them in a game module. Round phases, scoring, and card ownership are all
// decided server-side; this module only mirrors them.
package dixit

import (
	"encoding/json"
	"log"

	"github.com/AlexGrek/multigamews-client/game"
	"github.com/AlexGrek/multigamews-client/protocol"
)

// Round phases as reported in State.Status.
const (
	PhaseInitial = "initial"
	Phase1       = "phase1"
	Phase2       = "phase2"
	Phase3       = "phase3"
	PhaseResults = "results"
)

// Seat is one occupied seat.
type Seat struct {
	WebsocketUID string            `json:"websocket_uid"`
	Info         protocol.UserInfo `json:"info"`
}

// Player is one player's public round state.
type Player struct {
	Seat  int      `json:"seat"`
	Pts   int      `json:"pts"`
	Cards []string `json:"cards"`
	Acted bool     `json:"acted"`
	Guess *string  `json:"guess"`
}

// TableCard is one card lying on the table during voting.
type TableCard struct {
	Card     string `json:"card"`
	Author   int    `json:"author"`
	Original bool   `json:"original"`
	Votes    []int  `json:"votes"`
}

// Result summarizes the last finished round.
type Result struct {
	PlayersGuessedCorrectly   []int `json:"players_guessed_correctly"`
	PlayersGuessedIncorrectly []int `json:"players_guessed_incorrectly"`
}

// State is the in-game state while a round is running.
type State struct {
	Status          string      `json:"status"`
	Players         []*Player   `json:"players"`
	CurrentPlayer   int         `json:"current_player"`
	Table           []TableCard `json:"table"`
	LastRoundResult *Result     `json:"last_round_result"`
	Deck            []string    `json:"deck"`
}

// Snapshot is the complete public state of a dixit room: the seat setup
// plus the running round, when one exists.
type Snapshot struct {
	Seats    []*Seat `json:"seats"`
	WinDelay int     `json:"windelay"`
	Playing  *State  `json:"playing"`
}

// Personal is the viewer-specific side channel.
type Personal struct {
	WebsocketUID string `json:"websocket_uid"`
	Seat         int    `json:"seat"`
}

// Action is the payload of a dixit "action" command: the viewer's seat and
// the card chosen for the current phase.
type Action struct {
	Seat   int    `json:"seat"`
	Chosen string `json:"chosen"`
}

// Module displays a dixit room.
type Module struct {
	state game.Reconciler[Snapshot, Personal]
	chat  *game.ChatLog
}

// New creates an unmounted dixit module.
func New() *Module {
	return &Module{chat: game.NewChatLog(0)}
}

// Kind implements game.Module.
func (m *Module) Kind() string { return protocol.GameDixit }

// Mount implements game.Module.
func (m *Module) Mount(reg game.Registrar) {
	game.Mount(reg, m.Kind(), func(status, personal json.RawMessage) {
		if err := m.state.ApplyStatus(status, personal); err != nil {
			log.Printf("Rejecting dixit snapshot: %v", err)
		}
	}, m.chat)
}

// Snapshot returns the last dixit snapshot.
func (m *Module) Snapshot() (Snapshot, bool) { return m.state.Snapshot() }

// Personal returns the viewer's side-channel data.
func (m *Module) Personal() (Personal, bool) { return m.state.Personal() }

// RawSnapshot implements game.Module.
func (m *Module) RawSnapshot() (json.RawMessage, bool) { return m.state.RawSnapshot() }

// Chat implements game.Module.
func (m *Module) Chat() *game.ChatLog { return m.chat }
