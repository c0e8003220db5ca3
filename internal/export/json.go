// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/chatdeck/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to JSON format.
// The document always carries the complete message list so it can be
// re-imported; only IncludeMetadata is honoured.
type JSONExporter struct {
	options *Options
}

// jsonDocument is the exported shape.
type jsonDocument struct {
	Generator    string             `json:"generator,omitempty"`
	Exported     *time.Time         `json:"exported,omitempty"`
	Conversation model.Conversation `json:"conversation"`
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv model.Conversation) ([]byte, error) {
	if len(conv.Messages) == 0 {
		return nil, ErrEmptyConversation
	}

	doc := jsonDocument{Conversation: conv}
	if e.options.IncludeMetadata {
		at := e.options.now().UTC()
		doc.Generator = "chatdeck"
		doc.Exported = &at
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
