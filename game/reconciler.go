// Package game implements the client-side pattern shared by every game
// module: the server periodically pushes full-state snapshots, and the
// module replaces its local copy wholesale on every arrival. The client
// never merges, patches, or interprets snapshots beyond display needs, so
// it can never diverge from the server's view; it is eventually consistent
// and tolerates staleness between sending a command and seeing its effect.
package game

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Reconciler holds the last complete snapshot of one game, typed per game.
// S is the public snapshot every viewer receives; P is the viewer-specific
// side channel (own seat, own hand) that must never be inferred from S.
type Reconciler[S any, P any] struct {
	mu          sync.Mutex
	snapshot    S
	personal    P
	rawSnapshot json.RawMessage
	hasSnapshot bool
	hasPersonal bool
}

// ApplyStatus replaces the entire local snapshot with the inbound one.
// The personal side channel is likewise replaced: absent personal data
// clears any previous value rather than keeping it. A payload that does not
// decode into S is rejected and leaves the previous snapshot in place.
func (r *Reconciler[S, P]) ApplyStatus(status, personal json.RawMessage) error {
	var next S
	if err := json.Unmarshal(status, &next); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	var nextPersonal P
	hasPersonal := len(personal) > 0 && string(personal) != "null"
	if hasPersonal {
		if err := json.Unmarshal(personal, &nextPersonal); err != nil {
			return fmt.Errorf("decode personal data: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = next
	r.rawSnapshot = append(json.RawMessage(nil), status...)
	r.hasSnapshot = true
	r.personal = nextPersonal
	r.hasPersonal = hasPersonal
	return nil
}

// Snapshot returns the current snapshot; false until the first status
// arrives.
func (r *Reconciler[S, P]) Snapshot() (S, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot, r.hasSnapshot
}

// Personal returns the viewer-specific data; false when the last status
// carried none.
func (r *Reconciler[S, P]) Personal() (P, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.personal, r.hasPersonal
}

// RawSnapshot returns the verbatim JSON of the current snapshot, for
// observability surfaces that display state without typing it.
func (r *Reconciler[S, P]) RawSnapshot() (json.RawMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasSnapshot {
		return nil, false
	}
	return append(json.RawMessage(nil), r.rawSnapshot...), true
}
