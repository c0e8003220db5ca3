// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value slots chatdeck persists to.
//
// Two slots are used: KeyChatHistory holds the encoded conversation
// collection and KeyDarkMode holds the theme preference. Every backend
// implements the KV port and returns ErrNotFound for absent keys.
//
// # Backends
//
//   - bolt: single bbolt file (default)
//   - badger: badger directory
//   - sqlite: one table in a SQLite database
//   - redis: string keys under a "chatdeck:" prefix
//   - file: one JSON file per slot, written atomically
//   - memory: process memory only
//
// # Usage
//
//	kv, err := storage.Open(ctx, storage.Options{Backend: "bolt", DataDir: dir})
//	defer kv.Close()
//	blob, err := kv.Get(ctx, storage.KeyChatHistory)
package storage
