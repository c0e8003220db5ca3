// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider issues generation requests to hosted LLM APIs.
//
// Two providers are available: OpenAI, which speaks the OpenAI chat
// completions protocol and defaults to the Groq endpoint, and Gemini. Both
// map HTTP failures onto ErrAuthFailed, ErrRateLimited and ErrModelNotFound;
// UserMessage turns any error into the text of an error turn.
//
// # Usage
//
//	gen, err := provider.New(ctx, provider.Config{Kind: "openai", APIKey: key})
//	resp, err := gen.Generate(ctx, provider.Request{
//		Model:    model.DefaultModelID,
//		Messages: provider.Sendable(conv.Messages),
//	})
package provider
