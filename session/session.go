// Package session owns the client-side state derived from one server
// connection: connection status, profile, current room, lobby room list,
// and the active game module. All of it is either a verbatim echo of the
// last server push or ephemeral local bookkeeping; the server is the sole
// source of truth and may redefine any of it unsolicited at any time.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AlexGrek/multigamews-client/game"
	"github.com/AlexGrek/multigamews-client/messenger"
	"github.com/AlexGrek/multigamews-client/protocol"
	"github.com/AlexGrek/multigamews-client/validate"
)

// Status is the lifecycle state of the underlying transport.
type Status int

// Session lifecycle states. Closed is terminal for a given transport
// instance; Dial on a closed session starts a fresh one.
const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Reconnect backoff bounds, doubling per attempt.
const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// ModuleFactory builds a fresh game module for one room visit.
type ModuleFactory func() game.Module

// Session is one connection to the server plus everything derived from it.
// It replaces the ad hoc module-level state of earlier clients with a
// single owned object: created before Dial, reusable across redials.
type Session struct {
	mu       sync.Mutex
	endpoint string
	recorder *messenger.Recorder

	msg    *messenger.Messenger
	status Status

	profile   protocol.UserInfo
	room      *string
	roomGame  string
	rooms     []protocol.RoomInfo
	roomUsers []protocol.UserInfo
	lastError string

	factories map[string]ModuleFactory
	module    game.Module

	onUpdate func()
}

// New creates a disconnected session for the given ws:// endpoint.
func New(endpoint string) *Session {
	return &Session{
		endpoint:  endpoint,
		recorder:  messenger.NewRecorder(0),
		status:    StatusClosed,
		factories: make(map[string]ModuleFactory),
	}
}

// RegisterGame installs a module factory for a game kind. When a status
// push moves the session into a room of that kind, a fresh module is built
// and mounted. Rooms of unregistered kinds stay unmounted and their game
// frames land in the session's fallback handler.
func (s *Session) RegisterGame(kind string, factory ModuleFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[kind] = factory
}

// OnUpdate installs a hook called after every inbound frame that changed
// session state. Render layers use it to repaint; it runs on the dispatch
// goroutine and must return promptly.
func (s *Session) OnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Dial connects and starts dispatching. No handshake payload is sent: the
// server assigns an anonymous profile and pushes "status" and "rooms" on
// its own. Dial fails if the session is not closed.
func (s *Session) Dial(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusClosed {
		s.mu.Unlock()
		return fmt.Errorf("session is %s, not closed", s.status)
	}
	s.status = StatusConnecting
	s.room = nil
	s.roomGame = ""
	s.roomUsers = nil
	s.module = nil
	s.lastError = ""
	endpoint := s.endpoint
	s.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		s.mu.Lock()
		s.status = StatusClosed
		s.mu.Unlock()
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}

	msg := messenger.New(conn, s.recorder)
	msg.OnMessageType(protocol.TypeStatus, s.handleStatus)
	msg.OnMessageType(protocol.TypeRooms, s.handleRooms)
	msg.OnMessageType(protocol.TypeUserList, s.handleUserList)
	msg.OnMessageType(protocol.TypeError, s.handleError)
	msg.OnMessageType(protocol.TypeGame, s.handleUnmountedGame)
	msg.OnClose(s.handleTransportClose)

	s.mu.Lock()
	s.msg = msg
	s.status = StatusOpen
	s.mu.Unlock()

	go msg.Run()

	log.Printf("Connected to %s", endpoint)
	return nil
}

// DialWithRetry dials with capped exponential backoff. Requests that were
// in flight before a disconnect do not survive into the new connection;
// consumers re-request whatever they still need once the fresh "status"
// arrives.
func (s *Session) DialWithRetry(ctx context.Context, maxAttempts int) error {
	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.Dial(ctx)
		if lastErr == nil {
			return nil
		}
		log.Printf("Connect attempt %d/%d failed: %v (retrying in %v)", attempt, maxAttempts, lastErr, backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", maxAttempts, lastErr)
}

// Close shuts the transport down from the local side.
func (s *Session) Close() {
	s.mu.Lock()
	msg := s.msg
	s.status = StatusClosed
	s.mu.Unlock()
	if msg != nil {
		msg.Close()
	}
}

func (s *Session) handleTransportClose(err error) {
	if err != nil {
		log.Printf("Connection lost: %v", err)
	} else {
		log.Printf("Connection closed by server")
	}
	// Room and profile are kept as last seen, but consumers must treat
	// them as stale: Status gates everything.
	s.mu.Lock()
	s.status = StatusClosed
	fn := s.onUpdate
	s.mu.Unlock()
	s.notify(fn)
}

func (s *Session) notify(fn func()) {
	if fn != nil {
		fn()
	}
}

// handleStatus applies a "status" push: the server's authoritative word on
// who we are and where we are. It may arrive at any time, for out-of-band
// reasons, and is the only confirmation a room transition ever gets.
func (s *Session) handleStatus(env protocol.Envelope) {
	status, err := protocol.ParseUserStatus(env.Data)
	if err != nil {
		log.Printf("Dropping bad status frame: %v", err)
		return
	}

	s.mu.Lock()
	s.profile = status.Info
	prevRoom := s.room
	prevGame := s.roomGame
	s.room = status.Room
	if status.GameStatus != nil {
		s.roomGame = status.GameStatus.Game
		s.roomUsers = status.GameStatus.Users
	} else {
		s.roomGame = ""
		s.roomUsers = nil
	}

	// A module is remounted whenever the room itself changes, not only
	// the game kind: a fresh room means a fresh snapshot request.
	roomChanged := (prevRoom == nil) != (status.Room == nil) ||
		(prevRoom != nil && status.Room != nil && *prevRoom != *status.Room)

	var mount game.Module
	switch {
	case status.Room == nil:
		s.module = nil
	case s.module == nil || roomChanged || s.roomGame != prevGame:
		if factory, ok := s.factories[s.roomGame]; ok {
			s.module = factory()
			mount = s.module
		} else {
			s.module = nil
		}
	}
	active := s.module
	msg := s.msg
	fn := s.onUpdate
	s.mu.Unlock()

	if mount != nil {
		mount.Mount(msg)
	} else if active == nil && msg != nil {
		// No module owns the room (lobby, or an unregistered game kind):
		// reclaim the "game" slot from whatever module held it.
		msg.OnMessageType(protocol.TypeGame, s.handleUnmountedGame)
	}
	s.notify(fn)
}

func (s *Session) handleRooms(env protocol.Envelope) {
	rooms, err := protocol.ParseRoomList(env.Data)
	if err != nil {
		log.Printf("Dropping bad room list: %v", err)
		return
	}
	s.mu.Lock()
	s.rooms = rooms
	fn := s.onUpdate
	s.mu.Unlock()
	s.notify(fn)
}

func (s *Session) handleUserList(env protocol.Envelope) {
	users, err := protocol.ParseUserList(env.Data)
	if err != nil {
		log.Printf("Dropping bad user list: %v", err)
		return
	}
	s.mu.Lock()
	s.roomUsers = users
	fn := s.onUpdate
	s.mu.Unlock()
	s.notify(fn)
}

func (s *Session) handleError(env protocol.Envelope) {
	log.Printf("Server error: %s", env.Message)
	s.mu.Lock()
	s.lastError = env.Message
	fn := s.onUpdate
	s.mu.Unlock()
	s.notify(fn)
}

func (s *Session) handleUnmountedGame(env protocol.Envelope) {
	log.Printf("Game frame received with no game module mounted")
}

func (s *Session) send(env protocol.Envelope) error {
	s.mu.Lock()
	msg := s.msg
	open := s.status == StatusOpen
	s.mu.Unlock()
	if !open || msg == nil || !msg.Send(env) {
		return fmt.Errorf("not connected")
	}
	return nil
}

// CreateRoom asks the server to create (and join) a room of the given game
// kind. Success shows up as a later "status" push naming the room; failure
// as an "error" frame.
func (s *Session) CreateRoom(name, gameKind string) error {
	if err := validate.RoomName(name); err != nil {
		return err
	}
	return s.send(protocol.NewCreateRoom(name, gameKind))
}

// EnterRoom asks the server to move this session into the named room. The
// session does not assume success: the current room changes only when the
// next "status" push confirms it.
func (s *Session) EnterRoom(name string) error {
	if err := validate.RoomName(name); err != nil {
		return err
	}
	return s.send(protocol.NewEnterRoom(name))
}

// LeaveRoom asks the server to move this session back to the lobby.
func (s *Session) LeaveRoom() error {
	return s.send(protocol.NewLeaveRoom())
}

// ChangeProfile updates the caller's profile server-side. The local copy
// changes only when the confirming "status" push arrives.
func (s *Session) ChangeProfile(info protocol.UserInfo) error {
	if err := validate.Profile(info); err != nil {
		return err
	}
	env, err := protocol.NewChangeInfo(info)
	if err != nil {
		return err
	}
	return s.send(env)
}

// RefreshRooms re-requests the lobby room list.
func (s *Session) RefreshRooms() error {
	return s.send(protocol.NewListRooms())
}

// RefreshStatus re-requests the session status push.
func (s *Session) RefreshStatus() error {
	return s.send(protocol.NewGetUserInfo())
}

// SendChat sends a chat line to the current room.
func (s *Session) SendChat(text string) error {
	if err := validate.ChatLine(text); err != nil {
		return err
	}
	return s.send(protocol.NewGameChat(text))
}

// TakeSeat claims a seat at the current room's table.
func (s *Session) TakeSeat(seat int) error {
	return s.send(protocol.NewTakeSeat(seat))
}

// StartGame asks the current room's engine to start.
func (s *Session) StartGame() error {
	return s.send(protocol.NewStartGame())
}

// SendAction forwards an opaque game-specific command.
func (s *Session) SendAction(action any) error {
	env, err := protocol.NewGameAction(action)
	if err != nil {
		return err
	}
	return s.send(env)
}

// ChangeOptions forwards an opaque game-specific settings payload.
func (s *Session) ChangeOptions(options any) error {
	env, err := protocol.NewChangeOptions(options)
	if err != nil {
		return err
	}
	return s.send(env)
}

// RequestResource registers the reply handler for a named out-of-band
// resource and asks the server for it. The handler fires whenever a reply
// correlated to that name arrives; a reply may never arrive at all (e.g.
// the connection drops first), and after a redial the caller simply
// requests again.
func (s *Session) RequestResource(name string, handler func(json.RawMessage)) error {
	if err := validate.RequestName(name); err != nil {
		return err
	}
	s.mu.Lock()
	msg := s.msg
	s.mu.Unlock()
	if msg == nil {
		return fmt.Errorf("not connected")
	}
	msg.OnRequest(name, handler)
	if !msg.Request(name) {
		return fmt.Errorf("not connected")
	}
	return nil
}

// Status reports the transport lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Profile returns the server-assigned profile as last pushed.
func (s *Session) Profile() protocol.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Room returns the current room name, or nil in the lobby.
func (s *Session) Room() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// RoomGame returns the game kind of the current room, or "" in the lobby.
func (s *Session) RoomGame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomGame
}

// Rooms returns the lobby room list as last pushed.
func (s *Session) Rooms() []protocol.RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.RoomInfo, len(s.rooms))
	copy(out, s.rooms)
	return out
}

// RoomUsers returns the current room's members as last pushed.
func (s *Session) RoomUsers() []protocol.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.UserInfo, len(s.roomUsers))
	copy(out, s.roomUsers)
	return out
}

// LastError returns the message of the last server "error" frame.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Module returns the active game module, or nil outside a room.
func (s *Session) Module() game.Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.module
}

// Recorder exposes the traffic recorder shared across redials.
func (s *Session) Recorder() *messenger.Recorder {
	return s.recorder
}

// Messenger exposes the dispatch core of the current connection, or nil
// before the first Dial. Consumers use it to register additional handlers.
func (s *Session) Messenger() *messenger.Messenger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}
