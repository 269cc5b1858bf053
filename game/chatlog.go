package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AlexGrek/multigamews-client/protocol"
)

// ChatEntry is one received chat line. Sender is nil for lines the server
// attributes to nobody.
type ChatEntry struct {
	ID     string             `json:"id"`
	Sender *protocol.UserInfo `json:"sender,omitempty"`
	Text   string             `json:"text"`
	At     time.Time          `json:"at"`
}

// ChatLog is an append-only, bounded log of chat lines. Unlike snapshots,
// chat is never replaced: entries only accumulate, and only the oldest are
// evicted when the bound is hit.
type ChatLog struct {
	mu      sync.Mutex
	entries []ChatEntry
	limit   int
}

// NewChatLog creates a log keeping at most limit entries; a non-positive
// limit falls back to 500.
func NewChatLog(limit int) *ChatLog {
	if limit <= 0 {
		limit = 500
	}
	return &ChatLog{limit: limit}
}

// Append adds one line to the log.
func (l *ChatLog) Append(sender *protocol.UserInfo, text string) ChatEntry {
	entry := ChatEntry{
		ID:     uuid.New().String(),
		Sender: sender,
		Text:   text,
		At:     time.Now(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) >= l.limit {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns a copy of the log, oldest first.
func (l *ChatLog) Entries() []ChatEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of retained entries.
func (l *ChatLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
