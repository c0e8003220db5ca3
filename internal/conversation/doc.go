// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation keeps the conversation collection and the active
// conversation in sync with the chatHistory storage slot.
//
// The Store is created once at startup with an injected storage.KV and is
// shared by every front end. Each create, rename, delete, append or model
// change writes the whole collection back before returning.
//
// # Usage
//
//	store, err := conversation.Open(ctx, kv, conversation.Options{Logger: logger})
//	id, _ := store.ActiveID()
//	store.AppendUserTurn(id, "Hello")
//	store.AppendAssistantTurn(id, "Hi there!", model.DefaultModelID)
//
// # Snapshot Format
//
// The slot holds a JSON array of records, newest created first. Decode also
// reads the older shape that tagged messages with "type": "human" / "ai" /
// "error" and used millisecond timestamps (numbers or strings) as ids.
package conversation
