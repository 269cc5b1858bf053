package game

import (
	"encoding/json"
	"log"

	"github.com/AlexGrek/multigamews-client/messenger"
	"github.com/AlexGrek/multigamews-client/protocol"
)

// Registrar is the slice of the dispatch core a game module needs: claim
// the "game" message type and send commands. *messenger.Messenger
// satisfies it.
type Registrar interface {
	OnMessageType(name string, h messenger.Handler)
	Send(env protocol.Envelope) bool
}

// Module is one game consumer. Exactly one module is active at a time; its
// Mount claims the "game" handler slot (displacing the previous module, by
// the single-handler contract) and must proactively request a snapshot,
// since the server pushes nothing on room entry alone.
type Module interface {
	// Kind returns the game kind this module displays ("poker", "dixit", ...).
	Kind() string
	// Mount registers the module with the dispatch core and requests the
	// initial snapshot.
	Mount(reg Registrar)
	// RawSnapshot exposes the last snapshot verbatim for observability
	// surfaces; false until the first status arrives.
	RawSnapshot() (json.RawMessage, bool)
	// Chat exposes the module's chat log.
	Chat() *ChatLog
}

// Mount wires the standard game-frame plumbing shared by all modules:
// decode the payload, hand status and chat to the callbacks, log engine
// errors, then request the initial snapshot.
func Mount(reg Registrar, kind string,
	onStatus func(status, personal json.RawMessage),
	chat *ChatLog) {

	reg.OnMessageType(protocol.TypeGame, func(env protocol.Envelope) {
		msg, err := protocol.ParseGameMessage(env.Data)
		if err != nil {
			log.Printf("Dropping bad game frame for %s: %v", kind, err)
			return
		}
		switch msg.Type {
		case protocol.GameCmdStatus:
			onStatus(msg.Status, msg.Personal)
		case protocol.GameCmdChat:
			chat.Append(msg.Sender, msg.Text)
		case protocol.GameCmdError:
			log.Printf("Game engine error (%s): %s: %s", kind, msg.Error, msg.Message)
		default:
			log.Printf("Unexpected game payload type %q for %s", msg.Type, kind)
		}
	})
	reg.Send(protocol.NewGetStatus())
}
