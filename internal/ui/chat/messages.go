// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/provider"
	"github.com/jeranaias/chatdeck/internal/session"
	"github.com/jeranaias/chatdeck/internal/storage"
)

// =============================================================================
// MESSAGES
// =============================================================================

// responseMsg carries a finished provider call back to the update loop.
type responseMsg struct {
	req  *session.Request
	resp provider.Response
	err  error
}

// storeChangedMsg signals that the conversation store was mutated.
type storeChangedMsg struct{}

// prefSavedMsg reports the result of persisting the dark-mode preference.
type prefSavedMsg struct {
	dark bool
	err  error
}

// clearStatusMsg clears a status line set at the given time.
type clearStatusMsg struct {
	set time.Time
}

// ConfigReloadedMsg is sent by the config watcher after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// generateCmd runs the provider call for req off the update loop.
func generateCmd(ctx context.Context, sess *session.Session, req *session.Request) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = responseMsg{req: req, err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		resp, err := sess.Execute(ctx, req)
		return responseMsg{req: req, resp: resp, err: err}
	}
}

// waitForChange blocks until the store reports a mutation.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// saveDarkModeCmd persists the dark-mode preference.
func saveDarkModeCmd(kv storage.KV, dark bool) tea.Cmd {
	return func() tea.Msg {
		if kv == nil {
			return prefSavedMsg{dark: dark}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return prefSavedMsg{dark: dark, err: storage.SaveDarkMode(ctx, kv, dark)}
	}
}

// clearStatusAfter schedules removal of the status line.
func clearStatusAfter(set time.Time, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{set: set}
	})
}
