// Package message defines the chat message model the retrieval core operates on.
//
// Messages are owned by the structured store; the retrieval core reads their
// identifier and text and writes back a derived embedding keyed by the same
// identifier. A message's text is immutable once created; if content ever
// needs to change, the message (and its vector) is replaced, not mutated.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Message represents one chat turn.
type Message struct {
	// ID is the opaque, immutable message identifier.
	ID uuid.UUID

	// Text is the message content, immutable once created.
	Text string

	// IsUser is true for user-authored turns, false for system/assistant turns.
	IsUser bool

	// CreatedAt is the creation timestamp, used as the recency sort key.
	CreatedAt time.Time
}

// New creates a message with a fresh identifier and a UTC creation timestamp.
func New(text string, isUser bool) *Message {
	return &Message{
		ID:        uuid.New(),
		Text:      text,
		IsUser:    isUser,
		CreatedAt: time.Now().UTC(),
	}
}

// Role returns "user" or "assistant" for logging and CLI output.
func (m *Message) Role() string {
	if m.IsUser {
		return "user"
	}
	return "assistant"
}
