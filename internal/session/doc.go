// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-window chat state and runs generation
// requests.
//
// A Session sits between the conversation store and a provider.Generator.
// It tracks the selected model, generation parameters, the unsent draft
// and whether a request is outstanding.
//
// # Request Lifecycle
//
// Sending is split in three steps so a UI can run the slow part off its
// event loop:
//
//	req, ok := sess.Prepare(text)     // user turn appended, loading set
//	resp, err := sess.Execute(ctx, req)
//	sess.Finish(req, resp, err)       // reply or error turn, loading cleared
//
// Send does all three synchronously. At most one request is outstanding;
// Prepare refuses while loading. The reply is always appended to the
// conversation that was active at Prepare time, even if the user has
// navigated away. Deleting that conversation cancels the call and drops
// its result.
package session
