// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatdeck command line.
//
// Commands:
//
//	chatdeck [tui]            Full-screen interface (falls back to chat without a terminal)
//	chatdeck chat             Line-mode chat with history and slash commands
//	chatdeck ask PROMPT...    One-shot prompt; reads stdin when no prompt is given
//	chatdeck list [--json]    Conversation table
//	chatdeck export [ID]      Write a conversation as Markdown, JSON or HTML
//	chatdeck config ...       path, show, init, get, set, keys
//	chatdeck version
//
// Global flags --config, --log-level, --backend, --model and --provider
// override the configuration file for one run.
package cli
