// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: one chat thread with its name, model, messages and timestamp
//   - Message: a single turn tagged with a Role
//   - Role: closed set of message kinds (user, assistant, system, error)
//   - ModelInfo: an entry of the model picker catalog
//
// # Usage
//
//	conv := model.NewConversation(id, model.DefaultModelID, time.Now())
//	conv.Append(model.NewUserMessage("Hello!"), time.Now())
//	conv.Name = model.ProvisionalTitle("Hello!")
//
// Reasoning spans emitted by some models are split off for display only:
//
//	thinking, answer := model.SplitReasoning(msg.Content)
package model
