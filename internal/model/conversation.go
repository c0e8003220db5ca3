// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/chatdeck/internal/util"
)

// DefaultName labels a conversation that has neither been renamed nor
// received a message yet.
const DefaultName = "New conversation"

// TitleLength is the number of characters of a user message kept in a
// provisional title.
const TitleLength = 20

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is one persisted chat thread.
type Conversation struct {
	ID int64 `json:"id"`

	// Name is the sidebar label. Renamed is set once the user picks a name,
	// after which sends no longer derive one.
	Name    string `json:"name"`
	Renamed bool   `json:"renamed,omitempty"`

	// Model is the generation model last used in this conversation.
	Model string `json:"model"`

	// Messages is append-only.
	Messages []Message `json:"messages"`

	// Timestamp is the last time a message was appended.
	Timestamp time.Time `json:"timestamp"`
}

// NewConversation creates an empty conversation.
func NewConversation(id int64, modelID string, now time.Time) Conversation {
	return Conversation{
		ID:        id,
		Name:      DefaultName,
		Model:     modelID,
		Messages:  []Message{},
		Timestamp: now,
	}
}

// Append adds msg to the end of the conversation and bumps the timestamp.
func (c *Conversation) Append(msg Message, now time.Time) {
	c.Messages = append(c.Messages, msg)
	c.Timestamp = now
}

// Clone returns a deep copy that shares no slices with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// MessageCount returns the number of messages in the conversation.
func (c Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if the conversation has no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message, if any.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Preview returns the first user message truncated for list display.
func (c Conversation) Preview(maxRunes int) string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && strings.TrimSpace(msg.Content) != "" {
			return util.TruncateRunes(util.SingleLine(msg.Content), maxRunes)
		}
	}
	return ""
}

// ProvisionalTitle derives a conversation name from message text: the first
// TitleLength characters, with "..." appended when the text is longer.
func ProvisionalTitle(text string) string {
	text = util.SingleLine(norm.NFC.String(text))
	return util.PrefixRunes(text, TitleLength)
}
