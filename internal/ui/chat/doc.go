// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the full-screen Bubble Tea interface of chatdeck.

The window has three panes:

  - Sidebar: the conversation list, newest first, with a DD/MM/YY HH:mm
    timestamp per row. Enter selects, n creates, r renames, d deletes.
  - Main: the active conversation rendered with glamour, and the input line.
  - Parameters: model, temperature, max tokens and the system prompt.

Tab moves focus between panes; Ctrl+B and Ctrl+P hide the side panes and
Ctrl+T toggles light and dark colors, persisting the choice.

# Requests

Sending runs session.Prepare on the update loop, the provider call in a
command goroutine, and session.Finish when the responseMsg arrives. The
reply is added to the conversation that was active when it was sent.

# Store Changes

The model registers a store listener that wakes a waiting command, so
mutations from any path refresh the sidebar.
*/
package chat
