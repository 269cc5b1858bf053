package messenger

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Frame directions recorded by the observability sink.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// TrafficRecord is one recorded frame.
type TrafficRecord struct {
	ID        string    `json:"id"`
	Direction string    `json:"direction"`
	Payload   string    `json:"payload"`
	At        time.Time `json:"at"`
}

// Recorder is a bounded, best-effort log of every frame sent and received.
// It exists for observability only and never affects protocol correctness;
// a nil *Recorder is valid and records nothing.
type Recorder struct {
	mu      sync.Mutex
	records []TrafficRecord
	limit   int
	dropped int
}

// NewRecorder creates a recorder keeping at most limit frames; older frames
// are evicted first. A non-positive limit falls back to 256.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 256
	}
	return &Recorder{limit: limit}
}

// Record stores one frame.
func (r *Recorder) Record(direction string, payload []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) >= r.limit {
		r.records = r.records[1:]
		r.dropped++
	}
	r.records = append(r.records, TrafficRecord{
		ID:        uuid.New().String(),
		Direction: direction,
		Payload:   string(payload),
		At:        time.Now(),
	})
}

// Snapshot returns a copy of the retained records, oldest first.
func (r *Recorder) Snapshot() []TrafficRecord {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TrafficRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Dropped reports how many records were evicted to respect the limit.
func (r *Recorder) Dropped() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
