package poker

import (
	"testing"

	"github.com/AlexGrek/multigamews-client/messenger"
	"github.com/AlexGrek/multigamews-client/protocol"
)

type fakeRegistrar struct {
	handlers map[string]messenger.Handler
	sent     []protocol.Envelope
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{handlers: make(map[string]messenger.Handler)}
}

func (f *fakeRegistrar) OnMessageType(name string, h messenger.Handler) { f.handlers[name] = h }
func (f *fakeRegistrar) Send(env protocol.Envelope) bool {
	f.sent = append(f.sent, env)
	return true
}

func (f *fakeRegistrar) push(t *testing.T, frame string) {
	t.Helper()
	env, err := protocol.Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Bad test frame: %v", err)
	}
	f.handlers[env.Type](env)
}

const setupFrame = `{"type":"game","data":{"type":"status","status":{
	"stage":"setup",
	"setup":{"gameName":"poker","windelay":3000,"seats":[
		{"websocket_uid":"uid-1","info":{"name":"alice","gender":1},"ai":false},
		null,
		{"websocket_uid":"uid-2","info":{"name":"bot_1","gender":0},"ai":true}
	]}
}}}`

const playingFrame = `{"type":"game","data":{"type":"status","status":{
	"stage":"playing",
	"setup":{"gameName":"poker","windelay":3000,"seats":[
		{"websocket_uid":"uid-1","info":{"name":"alice","gender":1},"ai":false},
		{"websocket_uid":"uid-2","info":{"name":"bob","gender":-1},"ai":false}
	]},
	"playing":{
		"players":[
			{"stack":980,"bet":20,"cards":[],"folded":false,"lastAction":{"action":"small_blind","amount":20},"isAllIn":false},
			{"stack":960,"bet":40,"cards":[],"folded":false,"lastAction":null,"isAllIn":false}
		],
		"dealer":0,"turn":0,"table":["AS","KD","2H"],"bank":60,"small_blind":20,"total_turns":4
	}
},"personal":{"websocket_uid":"uid-1","seat":0,"expected_actions":[
	{"action":"call","amount":20},{"action":"fold","amount":0},{"action":"raise","amount":40}
]}}}`

func TestModuleMountsAndRequestsStatus(t *testing.T) {
	m := New()
	if m.Kind() != protocol.GamePoker {
		t.Fatalf("Expected poker kind, got %q", m.Kind())
	}

	reg := newFakeRegistrar()
	m.Mount(reg)

	if len(reg.sent) != 1 {
		t.Fatalf("Expected a get_status on mount, sent %d frames", len(reg.sent))
	}
	msg, err := protocol.ParseGameMessage(reg.sent[0].Data)
	if err != nil || msg.Type != protocol.GameCmdGetStatus {
		t.Errorf("Expected get_status, got %s (%v)", reg.sent[0].Data, err)
	}
	if _, ok := m.Snapshot(); ok {
		t.Error("Expected no snapshot before the first status")
	}
}

func TestSetupSnapshot(t *testing.T) {
	m := New()
	reg := newFakeRegistrar()
	m.Mount(reg)
	reg.push(t, setupFrame)

	snap, ok := m.Snapshot()
	if !ok {
		t.Fatal("Expected a snapshot after the status push")
	}
	if snap.Stage != StageSetup {
		t.Errorf("Expected setup stage, got %q", snap.Stage)
	}
	if snap.Setup.WinDelay != 3000 {
		t.Errorf("Expected windelay 3000, got %d", snap.Setup.WinDelay)
	}
	if len(snap.Setup.Seats) != 3 || snap.Setup.Seats[1] != nil {
		t.Fatalf("Expected 3 seats with the middle one empty, got %+v", snap.Setup.Seats)
	}
	if !snap.Setup.Seats[2].AI || snap.Setup.Seats[2].Info.Name != "bot_1" {
		t.Errorf("Expected an AI in seat 2, got %+v", snap.Setup.Seats[2])
	}
	if snap.Playing != nil {
		t.Error("Expected no in-hand state during setup")
	}
}

func TestPlayingSnapshotAndPersonal(t *testing.T) {
	m := New()
	reg := newFakeRegistrar()
	m.Mount(reg)
	reg.push(t, playingFrame)

	snap, ok := m.Snapshot()
	if !ok || snap.Stage != StagePlaying || snap.Playing == nil {
		t.Fatalf("Expected an in-hand snapshot, got (%+v, %v)", snap, ok)
	}
	playing := snap.Playing
	if playing.Bank != 60 || playing.SmallBlind != 20 || playing.Turn != 0 {
		t.Errorf("Unexpected hand state: %+v", playing)
	}
	if len(playing.Table) != 3 || playing.Table[0] != "AS" {
		t.Errorf("Unexpected table cards: %v", playing.Table)
	}
	if playing.Players[0].Bet == nil || *playing.Players[0].Bet != 20 {
		t.Errorf("Unexpected bet for player 0: %+v", playing.Players[0])
	}
	if playing.Players[0].LastAction == nil || playing.Players[0].LastAction.Action != "small_blind" {
		t.Errorf("Unexpected last action: %+v", playing.Players[0].LastAction)
	}

	personal, ok := m.Personal()
	if !ok {
		t.Fatal("Expected personal data with the playing snapshot")
	}
	if personal.Seat != 0 || personal.WebsocketUID != "uid-1" {
		t.Errorf("Unexpected personal data: %+v", personal)
	}
	if len(personal.ExpectedActions) != 3 || personal.ExpectedActions[2].Amount != 40 {
		t.Errorf("Unexpected expected actions: %+v", personal.ExpectedActions)
	}
}

func TestSnapshotIsReplacedNotMerged(t *testing.T) {
	m := New()
	reg := newFakeRegistrar()
	m.Mount(reg)

	reg.push(t, playingFrame)
	reg.push(t, setupFrame) // hand ended, back to setup

	snap, _ := m.Snapshot()
	if snap.Stage != StageSetup || snap.Playing != nil {
		t.Errorf("Expected the setup snapshot to fully replace the hand, got %+v", snap)
	}
	if _, ok := m.Personal(); ok {
		t.Error("Expected personal data to be cleared by a status without it")
	}
}

func TestBadSnapshotKeepsPrevious(t *testing.T) {
	m := New()
	reg := newFakeRegistrar()
	m.Mount(reg)

	reg.push(t, setupFrame)
	reg.push(t, `{"type":"game","data":{"type":"status","status":{"stage":["not","a","string"]}}}`)

	snap, ok := m.Snapshot()
	if !ok || snap.Stage != StageSetup {
		t.Errorf("Expected the previous snapshot to survive, got (%+v, %v)", snap, ok)
	}
}
