// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the kind of a message. The set is closed: anything else is
// rejected when a snapshot is decoded.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleError:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Sendable reports whether messages of this role are part of the history
// sent to the provider. Error turns are local annotations only.
func (r Role) Sendable() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// ParseRole maps a stored role tag to a Role. Older snapshots used "human"
// and "ai" under a "type" key; both spellings are accepted.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser, true
	case "assistant", "ai":
		return RoleAssistant, true
	case "system":
		return RoleSystem, true
	case "error":
		return RoleError, true
	}
	return "", false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single turn in a conversation. Model is only meaningful on
// assistant messages.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// NewUserMessage creates a user turn.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant turn produced by modelID.
func NewAssistantMessage(content, modelID string) Message {
	return Message{Role: RoleAssistant, Content: content, Model: modelID}
}

// NewSystemMessage creates a system turn.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewErrorMessage creates an error turn shown in the conversation.
func NewErrorMessage(content string) Message {
	return Message{Role: RoleError, Content: content}
}

// =============================================================================
// REASONING SPANS
// =============================================================================

// Reasoning models wrap their chain of thought in these markers. The span is
// a display annotation; it stays in Content untouched.
const (
	ReasoningOpen  = "<think>"
	ReasoningClose = "</think>"
)

// SplitReasoning separates the first reasoning span from the visible answer.
// An unterminated span is treated as reasoning up to the end of the text.
func SplitReasoning(content string) (reasoning, answer string) {
	start := strings.Index(content, ReasoningOpen)
	if start < 0 {
		return "", content
	}
	before := content[:start]
	rest := content[start+len(ReasoningOpen):]

	end := strings.Index(rest, ReasoningClose)
	if end < 0 {
		return strings.TrimSpace(rest), strings.TrimSpace(before)
	}
	reasoning = strings.TrimSpace(rest[:end])
	after := rest[end+len(ReasoningClose):]
	answer = strings.TrimSpace(before + after)
	return reasoning, answer
}
