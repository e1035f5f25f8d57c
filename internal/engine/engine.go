// Package engine keeps a synchronized view of the active conversation. It is
// the single dispatch point between the transport, the typing tracker and the
// message log, and exposes the surface the presentation layer renders from.
package engine

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"

	"boltalka/internal/chat"
	"boltalka/internal/content"
	"boltalka/internal/envelope"
	"boltalka/internal/grouping"
	"boltalka/internal/models"
	"boltalka/internal/typing"
)

// ValidationError reports a user action rejected before anything is sent over
// the wire.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s", e.Reason)
}

// Directory is the REST collaborator consumed by the engine: the room listing
// polled at startup and the per-room history service.
type Directory interface {
	Rooms(ctx context.Context) ([]models.RoomEntry, error)
	Conversations(ctx context.Context, roomID string) ([]models.Message, error)
}

// SendFunc writes one frame to the transport. Send failures are logged and
// swallowed here; they never propagate into the presentation layer.
type SendFunc func(data []byte) error

type Config struct {
	Self      models.User
	Send      SendFunc
	Directory Directory

	// OnChange is invoked after every state mutation so the presentation
	// layer can re-render. May be nil.
	OnChange func()
}

// Engine state is guarded by one mutex: the transport read pump and the
// presentation goroutine both call in, and the mutex serializes them the way
// the original event loop serialized its callbacks.
type Engine struct {
	self      models.User
	send      SendFunc
	directory Directory
	onChange  func()

	log     *chat.Log
	tracker *typing.Tracker

	mu      sync.Mutex
	rooms   []models.RoomEntry
	room    *models.Room
	loading bool
}

func New(cfg Config) *Engine {
	e := &Engine{
		self:      cfg.Self,
		send:      cfg.Send,
		directory: cfg.Directory,
		onChange:  cfg.OnChange,
		log:       chat.NewLog(),
		tracker:   typing.NewTracker(),
	}
	if e.onChange == nil {
		e.onChange = func() {}
	}
	return e
}

// LoadRooms fetches the room directory once. A failure leaves the listing
// empty and is logged, not retried.
func (e *Engine) LoadRooms(ctx context.Context) {
	rooms, err := e.directory.Rooms(ctx)
	if err != nil {
		log.Printf("engine: room listing failed: %v", err)
		rooms = nil
	}

	e.mu.Lock()
	e.rooms = rooms
	e.mu.Unlock()
	e.onChange()
}

// Rooms returns the room directory listing.
func (e *Engine) Rooms() []models.RoomEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.RoomEntry(nil), e.rooms...)
}

// SelectRoom makes room the active conversation and starts an asynchronous
// history load. Switching again before the load resolves does not cancel it;
// the stale response is discarded when it arrives (fenced by room identity).
func (e *Engine) SelectRoom(ctx context.Context, room models.Room) {
	e.mu.Lock()
	r := room
	e.room = &r
	e.loading = true
	e.mu.Unlock()

	e.log.SetActive(room.ID)
	e.onChange()

	go func() {
		messages, err := e.directory.Conversations(ctx, room.ID)
		if err != nil {
			log.Printf("engine: history load for room %s failed: %v", room.ID, err)
			messages = nil
		}

		applied := e.log.Replace(room.ID, messages)

		e.mu.Lock()
		if e.room != nil && e.room.ID == room.ID {
			e.loading = false
		}
		e.mu.Unlock()

		if applied {
			e.onChange()
		}
	}()
}

// ActiveRoom returns the selected room, or false when none is selected.
func (e *Engine) ActiveRoom() (models.Room, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.room == nil {
		return models.Room{}, false
	}
	return *e.room, true
}

// IsLoading reports whether a history load for the active room is in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Submit sends text to the active room and appends it to the local log
// without waiting for a server echo. An empty text is a no-op; submitting
// with no room selected fails validation and sends nothing. Submitting also
// releases the typing state, mirroring the input losing focus.
func (e *Engine) Submit(text string) error {
	if text == "" {
		return nil
	}

	e.mu.Lock()
	room := e.room
	e.mu.Unlock()
	if room == nil {
		return &ValidationError{Reason: "no room selected"}
	}

	body := content.Sanitize(text)
	e.emit(envelope.Text{RoomID: room.ID, UserID: e.self.ID, Body: body})
	e.log.Append(body, e.self.ID)
	e.FocusOut()

	e.onChange()
	return nil
}

// FocusIn records that the message input gained focus and emits a typing IN
// envelope on the edge.
func (e *Engine) FocusIn() {
	e.mu.Lock()
	room := e.room
	e.mu.Unlock()
	if room == nil {
		return
	}

	if e.tracker.FocusIn(room.ID) {
		e.emit(envelope.Typing{RoomID: room.ID, UserID: e.self.ID, Active: true})
	}
}

// FocusOut records that the message input lost focus and emits a typing OUT
// envelope on the edge.
func (e *Engine) FocusOut() {
	e.mu.Lock()
	room := e.room
	e.mu.Unlock()
	if room == nil {
		return
	}

	if e.tracker.FocusOut(room.ID) {
		e.emit(envelope.Typing{RoomID: room.ID, UserID: e.self.ID, Active: false})
	}
}

// HandleFrame is the sole inbound dispatch point. Malformed or unexpected
// frames are dropped with a log line and leave all state unchanged; this
// method never panics into the transport's read pump.
func (e *Engine) HandleFrame(data []byte) {
	payload, err := envelope.Decode(data)
	if err != nil {
		slog.Error("dropping inbound frame", "error", err)
		return
	}

	switch p := payload.(type) {
	case envelope.Typing:
		e.tracker.SetRemote(p.RoomID, p.Active)
	case envelope.Text:
		e.log.Append(content.Sanitize(p.Body), p.UserID)
	}

	e.onChange()
}

// IsTyping reports the remote typing indicator for a room.
func (e *Engine) IsTyping(roomID string) bool {
	return e.tracker.IsTyping(roomID)
}

// DisplayGroups recomputes the display groups from the current log. The
// result is derived wholesale on every call; nothing is updated in place.
func (e *Engine) DisplayGroups() []grouping.Group {
	e.mu.Lock()
	var users map[string]models.User
	if e.room != nil {
		users = e.room.Users
	}
	e.mu.Unlock()

	return grouping.Build(e.log.Messages(), e.self.ID, users)
}

func (e *Engine) emit(p envelope.Payload) {
	data, err := envelope.Encode(p)
	if err != nil {
		log.Printf("engine: encode failed: %v", err)
		return
	}
	if err := e.send(data); err != nil {
		log.Printf("engine: send failed: %v", err)
	}
}
