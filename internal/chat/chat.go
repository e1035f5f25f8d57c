// Package chat holds the in-memory message log for the active room.
package chat

import (
	"sync"

	"boltalka/internal/models"

	"github.com/google/uuid"
)

// Log is the ordered message log of the currently selected room. Messages are
// kept strictly in the order they were appended or loaded; they are never
// resorted and never deduplicated against server history.
type Log struct {
	mu       sync.Mutex
	roomID   string
	messages []models.Message
}

func NewLog() *Log {
	return &Log{}
}

// SetActive marks roomID as the selected room and clears the log. Any history
// load still in flight for another room will be discarded on arrival.
func (l *Log) SetActive(roomID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.roomID = roomID
	l.messages = nil
}

// ActiveRoom returns the currently selected room id, or "" when none is.
func (l *Log) ActiveRoom() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.roomID
}

// Append adds a message to the log. It is used both for optimistic local
// writes and for messages received over the transport; the message gets a
// client-generated id since no server id exists for it.
func (l *Log) Append(content, userID string) models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := models.Message{
		ID:      uuid.NewString(),
		Content: content,
		UserID:  userID,
	}
	l.messages = append(l.messages, msg)
	return msg
}

// Replace installs a fetched history for roomID, replacing the whole log.
// The write is fenced by room identity: a response for a room that is no
// longer selected is dropped, and Replace reports whether the write applied.
func (l *Log) Replace(roomID string, messages []models.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if roomID != l.roomID {
		return false
	}
	l.messages = append([]models.Message(nil), messages...)
	return true
}

// Messages returns a snapshot of the log.
func (l *Log) Messages() []models.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Message(nil), l.messages...)
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
