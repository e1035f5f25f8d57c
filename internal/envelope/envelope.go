// Package envelope implements the wire format exchanged over the chat
// websocket. Every frame is a JSON envelope carrying a chat_type
// discriminator; Decode turns a frame into one of a closed set of payload
// types so dispatch over kinds is checked at compile time.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
)

type ChatType string

const (
	TypeText   ChatType = "TEXT"
	TypeTyping ChatType = "TYPING"
)

// Typing modes carried in the value slot of a TYPING envelope.
const (
	ModeIn  = "IN"
	ModeOut = "OUT"
)

var (
	ErrMalformed   = errors.New("malformed envelope")
	ErrUnknownType = errors.New("unknown chat_type")
)

// Envelope is the raw wire shape. ID is reserved for future correlation and
// is always 0 on send; Decode never reads it. Value is a single-element
// sequence today, but extra elements are tolerated and ignored.
type Envelope struct {
	ID       int      `json:"id"`
	ChatType ChatType `json:"chat_type"`
	Value    []string `json:"value"`
	RoomID   string   `json:"room_id"`
	UserID   string   `json:"user_id"`
}

// Payload is the decoded form of an envelope. The set of implementations is
// closed: Text and Typing.
type Payload interface {
	payload()
}

// Text is a chat message body for a room.
type Text struct {
	RoomID string
	UserID string
	Body   string
}

// Typing reports a remote user's typing state for a room.
type Typing struct {
	RoomID string
	UserID string
	Active bool
}

func (Text) payload()   {}
func (Typing) payload() {}

// Encode serializes a payload into its wire envelope.
func Encode(p Payload) ([]byte, error) {
	var env Envelope
	switch v := p.(type) {
	case Text:
		env = Envelope{ChatType: TypeText, Value: []string{v.Body}, RoomID: v.RoomID, UserID: v.UserID}
	case Typing:
		mode := ModeOut
		if v.Active {
			mode = ModeIn
		}
		env = Envelope{ChatType: TypeTyping, Value: []string{mode}, RoomID: v.RoomID, UserID: v.UserID}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, p)
	}
	return json.Marshal(env)
}

// Decode parses a wire frame. Frames with an unknown chat_type or without a
// value element fail; callers are expected to drop such frames and keep the
// connection alive.
func Decode(data []byte) (Payload, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(env.Value) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrMalformed)
	}

	switch env.ChatType {
	case TypeText:
		return Text{RoomID: env.RoomID, UserID: env.UserID, Body: env.Value[0]}, nil
	case TypeTyping:
		return Typing{RoomID: env.RoomID, UserID: env.UserID, Active: env.Value[0] == ModeIn}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.ChatType)
	}
}
