// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation to Markdown, JSON or HTML.
//
// # Supported Formats
//
//   - Markdown: YAML frontmatter plus one section per message
//   - JSON: the full conversation record, suitable for re-import
//   - HTML: standalone page with embedded CSS and chroma highlighting
//
// # Usage
//
//	exp, err := export.New("markdown", export.DefaultOptions())
//	path, err := export.ExportToFile(afero.NewOsFs(), conv, exp, opts)
//
// Reasoning spans in assistant replies are left out unless
// Options.IncludeReasoning is set.
package export
