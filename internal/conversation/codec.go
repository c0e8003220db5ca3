// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/chatdeck/internal/model"
)

// ErrMalformedSnapshot is returned by Decode when the blob is not a JSON
// array. The returned collection is empty in that case.
var ErrMalformedSnapshot = errors.New("malformed conversation snapshot")

// DecodeStats counts what Decode had to drop or upgrade.
type DecodeStats struct {
	Records          int
	DroppedRecords   int
	DroppedMessages  int
	UpgradedMessages int
}

// wireConversation accepts every record shape that has been written to the
// chatHistory slot, including the original one with timestamp ids.
type wireConversation struct {
	ID        json.RawMessage   `json:"id"`
	Name      string            `json:"name"`
	Renamed   bool              `json:"renamed"`
	Model     string            `json:"model"`
	Messages  []json.RawMessage `json:"messages"`
	Timestamp string            `json:"timestamp"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// =============================================================================
// ENCODE
// =============================================================================

// Encode serializes the collection in order as a JSON array.
func Encode(convs []model.Conversation) ([]byte, error) {
	out := make([]model.Conversation, len(convs))
	for i, c := range convs {
		c = c.Clone()
		for j := range c.Messages {
			if c.Messages[j].Role != model.RoleAssistant {
				c.Messages[j].Model = ""
			}
		}
		out[i] = c
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode conversations: %w", err)
	}
	return data, nil
}

// =============================================================================
// DECODE
// =============================================================================

// Decode parses a snapshot. Absent or empty input yields an empty
// collection. Records without a usable id and messages with an unknown role
// are dropped; the first record wins when ids repeat.
func Decode(data []byte) ([]model.Conversation, DecodeStats, error) {
	var stats DecodeStats
	convs := []model.Conversation{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return convs, stats, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return convs, stats, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	seen := make(map[int64]bool, len(raw))
	for _, r := range raw {
		var w wireConversation
		if err := json.Unmarshal(r, &w); err != nil {
			stats.DroppedRecords++
			continue
		}
		id, ok := parseID(w.ID)
		if !ok || seen[id] {
			stats.DroppedRecords++
			continue
		}
		seen[id] = true

		conv := model.Conversation{
			ID:        id,
			Name:      strings.TrimSpace(w.Name),
			Renamed:   w.Renamed,
			Model:     w.Model,
			Messages:  make([]model.Message, 0, len(w.Messages)),
			Timestamp: parseTimestamp(w.Timestamp),
		}
		if conv.Name == "" {
			conv.Name = model.DefaultName
		}
		for _, rm := range w.Messages {
			msg, upgraded, ok := decodeMessage(rm)
			if !ok {
				stats.DroppedMessages++
				continue
			}
			if upgraded {
				stats.UpgradedMessages++
			}
			conv.Messages = append(conv.Messages, msg)
		}
		convs = append(convs, conv)
		stats.Records++
	}
	return convs, stats, nil
}

func decodeMessage(raw json.RawMessage) (model.Message, bool, bool) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Message{}, false, false
	}
	tag, upgraded := w.Role, false
	if tag == "" {
		tag, upgraded = w.Type, true
	}
	role, ok := model.ParseRole(tag)
	if !ok {
		return model.Message{}, false, false
	}
	if string(role) != tag {
		upgraded = true
	}
	msg := model.Message{Role: role, Content: w.Content}
	if role == model.RoleAssistant {
		msg.Model = w.Model
	}
	return msg, upgraded, true
}

// parseID accepts positive integers encoded as JSON numbers or numeric
// strings.
func parseID(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		id = int64(f)
	}
	return id, id > 0
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
