// Package messenger implements the dispatch core: it owns one WebSocket
// connection, decodes inbound frames, and routes each frame to exactly one
// registered consumer.
//
// Subscription contract: at most one handler per message type and one per
// request name. Registering again replaces the previous handler; there is
// no fan-out. This matches the one-active-game-module-at-a-time usage and
// is deliberate, not an accident of implementation.
package messenger

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AlexGrek/multigamews-client/protocol"
)

// Conn is the subset of *websocket.Conn the messenger needs. Tests supply
// in-memory implementations.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Handler consumes a routed envelope.
type Handler func(protocol.Envelope)

// RequestHandler consumes the data payload of a request-correlated reply.
type RequestHandler func(json.RawMessage)

// Messenger routes inbound frames and transmits outbound envelopes.
//
// All handlers run on the single Run goroutine, one frame at a time, in the
// order the transport delivers them. A registration made while a handler is
// executing is observed starting with the next dispatched frame.
type Messenger struct {
	mu              sync.Mutex
	conn            Conn
	open            bool
	messageHandlers map[string]Handler
	requestHandlers map[string]RequestHandler
	unknown         Handler
	onClose         func(error)

	recorder  *Recorder
	malformed int
	unhandled int
}

// New wraps an established connection. The caller starts routing with Run.
func New(conn Conn, recorder *Recorder) *Messenger {
	return &Messenger{
		conn:            conn,
		open:            true,
		messageHandlers: make(map[string]Handler),
		requestHandlers: make(map[string]RequestHandler),
		recorder:        recorder,
	}
}

// OnMessageType registers the handler for a message type, replacing any
// previous registration for that type.
func (m *Messenger) OnMessageType(name string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messageHandlers[name] = h
}

// OnRequest registers the handler for replies correlated to the named
// request, replacing any previous registration for that name.
func (m *Messenger) OnRequest(name string, h RequestHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHandlers[name] = h
}

// OnUnknownType registers the singular fallback handler invoked for frames
// no other handler claims.
func (m *Messenger) OnUnknownType(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unknown = h
}

// OnClose registers a callback invoked once when the read loop exits while
// the connection was still considered open, i.e. on a remote close or a
// transport failure. A local Close suppresses it. A nil error means the
// peer closed the connection normally.
func (m *Messenger) OnClose(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = fn
}

// Send serializes the envelope and hands it to the transport. It returns
// false, without queueing, when the connection is not open: delivery is
// fire-and-forget and callers must not treat a failed send as delivered.
func (m *Messenger) Send(env protocol.Envelope) bool {
	frame, err := protocol.Encode(env)
	if err != nil {
		log.Printf("Not sending unencodable envelope: %v", err)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		log.Printf("Connection not open, dropping outbound frame: %s", frame)
		return false
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		log.Printf("Transport write failed: %v", err)
		return false
	}
	m.recorder.Record(DirectionOut, frame)
	return true
}

// Request asks the server for a named out-of-band resource. The eventual
// answer arrives asynchronously through the handler registered with
// OnRequest; there is no timeout and no way to abort, so callers must not
// block waiting for it.
func (m *Messenger) Request(name string) bool {
	return m.Send(protocol.NewRequest(name))
}

// Run reads and dispatches frames until the connection closes. It must be
// called exactly once; handler execution is run-to-completion and no two
// handlers ever execute concurrently.
func (m *Messenger) Run() {
	var closeErr error
	for {
		_, frame, err := m.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				closeErr = err
			}
			break
		}
		m.recorder.Record(DirectionIn, frame)
		m.dispatch(frame)
	}

	m.mu.Lock()
	wasOpen := m.open
	m.open = false
	onClose := m.onClose
	m.mu.Unlock()

	if onClose != nil && wasOpen {
		onClose(closeErr)
	}
}

// dispatch routes one frame to at most one handler:
//
//  1. undecodable or type-less frames are dropped as malformed
//  2. a handler registered for the type gets the full envelope
//  3. otherwise a handler registered for the request name gets the data
//  4. otherwise the unknown-type fallback gets the full envelope
//  5. otherwise the frame is counted as unhandled
func (m *Messenger) dispatch(frame []byte) {
	env, err := protocol.Decode(frame)
	if err != nil {
		m.mu.Lock()
		m.malformed++
		m.mu.Unlock()
		log.Printf("Dropping malformed frame: %v", err)
		return
	}

	m.mu.Lock()
	handler := m.messageHandlers[env.Type]
	var reqHandler RequestHandler
	if handler == nil && env.Request != "" {
		reqHandler = m.requestHandlers[env.Request]
	}
	unknown := m.unknown
	m.mu.Unlock()

	switch {
	case handler != nil:
		handler(env)
	case reqHandler != nil:
		reqHandler(env.Data)
	case unknown != nil:
		unknown(env)
	default:
		m.mu.Lock()
		m.unhandled++
		m.mu.Unlock()
		log.Printf("No handler for message type %q (request %q)", env.Type, env.Request)
	}
}

// Close shuts the connection down from the local side. Safe to call more
// than once.
func (m *Messenger) Close() {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return
	}
	m.open = false
	conn := m.conn
	m.mu.Unlock()

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
}

// IsOpen reports whether the connection still accepts outbound frames.
func (m *Messenger) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Stats reports how many frames were dropped as malformed and how many
// were decoded but claimed by no handler.
func (m *Messenger) Stats() (malformed, unhandled int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.malformed, m.unhandled
}
