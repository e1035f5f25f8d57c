// Package typing tracks typing state on two independent tracks: the local
// user's focus transitions (which decide when a typing envelope must be
// emitted) and remote typing notifications projected from received envelopes.
package typing

import "sync"

type Tracker struct {
	mu sync.Mutex

	// local focus state per room, used for edge detection
	local map[string]bool

	// remote typing state per room, last received wins
	remote map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{
		local:  make(map[string]bool),
		remote: make(map[string]bool),
	}
}

// FocusIn records that the input for roomID gained focus. It reports whether
// this is an edge, i.e. whether the caller should emit a typing IN envelope.
func (t *Tracker) FocusIn(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.local[roomID] {
		return false
	}
	t.local[roomID] = true
	return true
}

// FocusOut records that the input for roomID lost focus. It reports whether
// this is an edge, i.e. whether the caller should emit a typing OUT envelope.
func (t *Tracker) FocusOut(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.local[roomID] {
		return false
	}
	t.local[roomID] = false
	return true
}

// SetRemote applies a received typing notification. There is no timer-based
// auto-clear: a lost OUT leaves the indicator set until the next envelope for
// that room.
func (t *Tracker) SetRemote(roomID string, active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remote[roomID] = active
}

// IsTyping reports the remote typing indicator for a room.
func (t *Tracker) IsTyping(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remote[roomID]
}
