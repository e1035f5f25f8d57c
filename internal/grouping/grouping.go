// Package grouping turns a flat ordered message log into display groups: a
// group is a maximal run of consecutive messages sharing the same direction.
// Build is a pure function and is recomputed wholesale on every log change,
// so the grouping is always a deterministic function of current state.
package grouping

import "boltalka/internal/models"

type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// UnknownAvatar is the avatar placeholder for senders absent from the room
// directory.
const UnknownAvatar = "NA"

type GroupMessage struct {
	ID      string
	Content string
}

// Group is a run of same-direction messages. AvatarText is set only for
// incoming groups and is derived from the sender of the group's first
// message; it does not change if group membership later changes.
type Group struct {
	Direction  Direction
	AvatarText string
	Messages   []GroupMessage
}

// Build scans the log left to right and emits groups, breaking only at
// direction changes. users resolves sender display names for incoming
// avatars. O(n) in message count.
func Build(messages []models.Message, localUserID string, users map[string]models.User) []Group {
	var groups []Group

	for _, msg := range messages {
		direction := Incoming
		if msg.UserID == localUserID {
			direction = Outgoing
		}

		entry := GroupMessage{ID: msg.ID, Content: msg.Content}

		if n := len(groups); n > 0 && groups[n-1].Direction == direction {
			groups[n-1].Messages = append(groups[n-1].Messages, entry)
			continue
		}

		g := Group{Direction: direction, Messages: []GroupMessage{entry}}
		if direction == Incoming {
			g.AvatarText = avatarText(users, msg.UserID)
		}
		groups = append(groups, g)
	}

	return groups
}

func avatarText(users map[string]models.User, userID string) string {
	name := []rune(users[userID].Name)
	if len(name) == 0 {
		return UnknownAvatar
	}
	if len(name) > 2 {
		name = name[:2]
	}
	return string(name)
}
