package game

import (
	"encoding/json"

	"github.com/AlexGrek/multigamews-client/protocol"
)

// ChatModule displays a plain chat room: the "chat" game kind has no
// snapshot worth typing, only the shared chat stream.
type ChatModule struct {
	chat *ChatLog
}

// NewChatModule creates an unmounted chat module.
func NewChatModule() *ChatModule {
	return &ChatModule{chat: NewChatLog(0)}
}

// Kind implements Module.
func (m *ChatModule) Kind() string { return protocol.GameChat }

// Mount implements Module. The chat engine never answers get_status, but
// requesting it is harmless and keeps the activation sequence uniform.
func (m *ChatModule) Mount(reg Registrar) {
	Mount(reg, m.Kind(), func(status, personal json.RawMessage) {}, m.chat)
}

// RawSnapshot implements Module; chat rooms have no snapshot.
func (m *ChatModule) RawSnapshot() (json.RawMessage, bool) { return nil, false }

// Chat implements Module.
func (m *ChatModule) Chat() *ChatLog { return m.chat }
