package models

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

// User represents a chat participant. The engine treats users as read-only
// reference data resolved from the room directory.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"username"`
	Phone string `json:"phone,omitempty"`
}

// Room represents a chat room. IsTyping is a transient projection of the
// typing tracker and is never persisted.
type Room struct {
	ID       string          `json:"id"`
	Users    map[string]User `json:"users"`
	IsTyping bool            `json:"isTyping"`
}

// RoomEntry is one item of the room directory listing.
type RoomEntry struct {
	Room Room `json:"room"`
}

// Message is one entry of a conversation log. Locally created messages carry
// a client-generated id until the server is the source of truth again on the
// next history load.
type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// UserName resolves a display name by user id within a room. Unknown senders
// resolve to the empty string.
func (r Room) UserName(userID string) string {
	return r.Users[userID].Name
}
