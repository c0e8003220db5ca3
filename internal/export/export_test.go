// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdeck/internal/model"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func sampleConversation() model.Conversation {
	return model.Conversation{
		ID:    42,
		Name:  "Go: channels",
		Model: "llama-3.3-70b-versatile",
		Messages: []model.Message{
			model.NewUserMessage("How do I close a channel?"),
			model.NewAssistantMessage("<think>simple</think>Use `close(ch)`:\n\n```go\nclose(ch)\n```", "llama-3.3-70b-versatile"),
			model.NewErrorMessage("An error occurred. Please try again."),
		},
		Timestamp: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"markdown", ".md"},
		{"md", ".md"},
		{"JSON", ".json"},
		{"html", ".html"},
		{"htm", ".html"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := New(tt.format, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.ext, exp.FileExtension())
		})
	}

	_, err := New("pdf", nil)
	assert.Error(t, err)
}

func TestEmptyConversationRejected(t *testing.T) {
	for _, format := range Formats {
		exp, err := New(format, testOptions())
		require.NoError(t, err)
		_, err = exp.Export(model.Conversation{Name: "empty"})
		assert.ErrorIs(t, err, ErrEmptyConversation, format)
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions()).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "title: \"Go: channels\"\n")
	assert.Contains(t, md, "id: 42\n")
	assert.Contains(t, md, "exported: 2025-03-04T05:06:07Z\n")
	assert.Contains(t, md, "### You\n\nHow do I close a channel?")
	assert.Contains(t, md, "### Assistant (Llama 3.3)")
	assert.Contains(t, md, "```go\nclose(ch)\n```")
	assert.Contains(t, md, "> **Error**: An error occurred.")
	assert.NotContains(t, md, "<think>")
}

func TestMarkdownWithoutMetadata(t *testing.T) {
	opts := testOptions()
	opts.IncludeMetadata = false
	opts.IncludeReasoning = true

	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# Go: channels"))
	assert.Contains(t, md, "<think>simple</think>")
}

func TestJSONExport(t *testing.T) {
	conv := sampleConversation()
	out, err := NewJSONExporter(testOptions()).Export(conv)
	require.NoError(t, err)

	var doc struct {
		Generator    string             `json:"generator"`
		Conversation model.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "chatdeck", doc.Generator)
	assert.Equal(t, conv.ID, doc.Conversation.ID)
	assert.Equal(t, conv.Messages, doc.Conversation.Messages)
}

func TestHTMLExportEscapesAndHighlights(t *testing.T) {
	conv := sampleConversation()
	conv.Name = "<script>alert(1)</script>"
	conv.Messages = append(conv.Messages, model.NewUserMessage("a < b && `x`"))

	out, err := NewHTMLExporter(testOptions()).Export(conv)
	require.NoError(t, err)
	page := string(out)

	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "a &lt; b &amp;&amp; <code class=\"inline-code\">x</code>")
	assert.Contains(t, page, "<div class=\"code-lang\">go</div>")
	assert.Contains(t, page, "<pre")
	assert.Contains(t, page, "error-message")
	assert.Contains(t, page, "dark-theme")
}

func TestExportToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := testOptions()
	opts.OutputDir = "/out"

	path, err := ExportToFile(fs, sampleConversation(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "conversation_Go-_channels_20250304_050607.md"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Go: channels")
}

func TestWriteHistory(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := testOptions()
	opts.OutputDir = "/backup"

	path, err := WriteHistory(fs, []byte(`[{"id":1}]`), opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/backup", "chatdeck_history_20250304_050607.json"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(data))

	_, err = WriteHistory(fs, nil, opts)
	assert.ErrorIs(t, err, ErrEmptyConversation)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "conversation", sanitizeFilename("   "))
	assert.Equal(t, "a-b-c_d", sanitizeFilename("a/b:c d"))
	assert.Equal(t, 50, len([]rune(sanitizeFilename(strings.Repeat("x", 80)))))
}
