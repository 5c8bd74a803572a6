package domain

import "time"

// ChatMessage is a message in a match's chat room. The engine only writes
// system messages (e.g. the cost summary on confirmation); the chat UI and
// its transport are external.
type ChatMessage struct {
	ID         string
	ChatRoomID string
	SenderID   string // "system" for engine-emitted messages
	Body       string
	System     bool
	CreatedAt  time.Time
}
