package main

import "testing"

func TestDeriveEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		server string
		host   string
		port   int
		want   string
	}{
		{"explicit server wins", "wss://games.example.com/ws", "localhost", 8765, "wss://games.example.com/ws"},
		{"derived from host and port", "", "localhost", 8765, "ws://localhost:8765"},
		{"custom host", "", "10.0.0.5", 9000, "ws://10.0.0.5:9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveEndpoint(tt.server, tt.host, tt.port)
			if got != tt.want {
				t.Errorf("deriveEndpoint(%q, %q, %d) = %q, want %q", tt.server, tt.host, tt.port, got, tt.want)
			}
		})
	}
}

func TestNewSessionStartsDisconnected(t *testing.T) {
	s := newSession("ws://localhost:8765")
	if s == nil {
		t.Fatal("Expected a session")
	}
	if s.Status().String() != "closed" {
		t.Errorf("Expected a fresh session to be closed, got %s", s.Status())
	}
	if s.Module() != nil {
		t.Error("Expected no module before entering a room")
	}
}
