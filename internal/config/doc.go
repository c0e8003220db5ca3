// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatdeck.
//
// Supports both TOML and JSON configuration formats, with defaults,
// .env loading, environment variable overrides and validation.
//
// Configuration file locations (in order of precedence):
//   - the --config flag
//   - $XDG_CONFIG_HOME/chatdeck/config.toml
//   - $XDG_CONFIG_HOME/chatdeck/config.json
//   - Built-in defaults
//
// # Environment
//
//	CHATDECK_PROVIDER, CHATDECK_BASE_URL, CHATDECK_MODEL, CHATDECK_API_KEY
//	GROQ_API_KEY, GEMINI_API_KEY
//	CHATDECK_TEMPERATURE, CHATDECK_MAX_TOKENS, CHATDECK_SYSTEM_PROMPT
//	CHATDECK_BACKEND, CHATDECK_STORAGE_PATH, CHATDECK_REDIS_URL
//	CHATDECK_THEME, CHATDECK_LOG_LEVEL
//
// Generation parameters outside their slider ranges are clamped rather than
// rejected. A Watcher reloads the file on change so the TUI can pick up new
// defaults without a restart.
package config
