// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdeck/internal/model"
)

func TestDecodeEmptyInputs(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "[]"} {
		convs, _, err := Decode([]byte(in))
		require.NoError(t, err, "input %q", in)
		assert.Empty(t, convs)
		assert.NotNil(t, convs)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{"{", `{"id":1}`, "not json", `"str"`} {
		convs, _, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedSnapshot, "input %q", in)
		assert.Empty(t, convs)
	}
}

func TestDecodeLegacyShape(t *testing.T) {
	blob := `[
		{"id": 1736000000000, "name": "Hello", "model": "llama-3.3-70b-versatile",
		 "timestamp": "2025-01-04T14:13:20.000Z",
		 "messages": [
			{"type": "human", "content": "Hello"},
			{"type": "ai", "content": "Hi!", "model": "llama-3.3-70b-versatile"},
			{"type": "error", "content": "Ocorreu um erro."}
		 ]},
		{"id": "1735000000000", "name": "", "messages": []}
	]`

	convs, stats, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, 3, stats.UpgradedMessages)

	first := convs[0]
	assert.Equal(t, int64(1736000000000), first.ID)
	assert.Equal(t, time.Date(2025, 1, 4, 14, 13, 20, 0, time.UTC), first.Timestamp)
	require.Len(t, first.Messages, 3)
	assert.Equal(t, model.RoleUser, first.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, first.Messages[1].Role)
	assert.Equal(t, "llama-3.3-70b-versatile", first.Messages[1].Model)
	assert.Equal(t, model.RoleError, first.Messages[2].Role)

	second := convs[1]
	assert.Equal(t, int64(1735000000000), second.ID)
	assert.Equal(t, model.DefaultName, second.Name)
	assert.True(t, second.Timestamp.IsZero())
}

func TestDecodeDropsInvalid(t *testing.T) {
	blob := `[
		{"id": 5, "messages": [
			{"role": "user", "content": "ok"},
			{"role": "tool", "content": "unknown role"},
			{"role": "user", "content": 42},
			{"content": "no role"},
			{"role": "user", "content": "kept", "model": "stripped"}
		]},
		{"id": 5, "name": "duplicate"},
		{"name": "no id"},
		{"id": -3},
		{"id": "abc"},
		{"id": 1.5},
		"not an object"
	]`

	convs, stats, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 6, stats.DroppedRecords)
	assert.Equal(t, 3, stats.DroppedMessages)

	msgs := convs[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "ok", msgs[0].Content)
	assert.Equal(t, "kept", msgs[1].Content)
	assert.Empty(t, msgs[1].Model)
}

func TestEncodeStripsModelFromNonAssistant(t *testing.T) {
	conv := model.NewConversation(1, "m", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	conv.Messages = append(conv.Messages, model.Message{Role: model.RoleUser, Content: "x", Model: "m"})

	data, err := Encode([]model.Conversation{conv})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"model":"m"}`)

	// the input is not modified
	assert.Equal(t, "m", conv.Messages[0].Model)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 30, 0, 123000000, time.UTC)
	in := []model.Conversation{
		{
			ID: 2, Name: "Renamed", Renamed: true, Model: "qwen-2.5-32b", Timestamp: ts,
			Messages: []model.Message{
				model.NewSystemMessage("be brief"),
				model.NewUserMessage("hi"),
				model.NewAssistantMessage("<think>hm</think>hello", "qwen-2.5-32b"),
				model.NewErrorMessage("An error occurred. Please try again."),
			},
		},
		{ID: 1, Name: model.DefaultName, Model: "m", Timestamp: ts, Messages: []model.Message{}},
	}

	data, err := Encode(in)
	require.NoError(t, err)
	out, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
