// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/storage"
	"github.com/jeranaias/chatdeck/internal/ui/chat"
	"github.com/jeranaias/chatdeck/internal/ui/styles"
)

// TUICmd starts the full-screen interface.
type TUICmd struct {
	NoWatch bool `name:"no-watch" help:"Do not reload the config file when it changes"`
}

// Run executes the tui command. Without a terminal it falls back to the
// line-mode chat.
func (c *TUICmd) Run(ctx context.Context, g *Globals) error {
	if !IsTTY() || !IsStdoutTTY() {
		fmt.Fprintln(g.stderr, "Not a terminal; starting line-mode chat.")
		return (&ChatCmd{}).Run(ctx, g)
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog := newTUILogger(cfg.LogLevel)
	defer closeLog()

	a, err := g.open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	theme := styles.NewTheme(resolveTheme(ctx, a.kv, cfg.UI.Theme, logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := chat.New(chat.Options{
		Context:  ctx,
		Logger:   logger,
		Session:  a.session,
		Prefs:    a.kv,
		Theme:    theme,
		Provider: cfg.Provider.Kind,
		UI:       cfg.UI,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if !c.NoWatch {
		startConfigWatcher(ctx, g.configPath(), logger, func(updated *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: updated})
		})
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run interface: %w", err)
	}

	// The last write may have failed while the alt screen was up.
	if perr := a.store.LastPersistError(); perr != nil {
		fmt.Fprintf(g.stderr, "Warning: conversations may not have been saved: %v\n", perr)
	}
	return nil
}

// resolveTheme returns the saved darkMode preference when one exists, and
// the configured theme otherwise.
func resolveTheme(ctx context.Context, kv storage.KV, configured string, logger *slog.Logger) string {
	dark, found, err := storage.LoadDarkMode(ctx, kv)
	if err != nil {
		logger.Warn("failed to read theme preference", "error", err)
	}
	if !found {
		return configured
	}
	if dark {
		return styles.ThemeDark
	}
	return styles.ThemeLight
}

// startConfigWatcher hands every successful reload of path to apply until
// ctx is cancelled.
func startConfigWatcher(ctx context.Context, path string, logger *slog.Logger, apply func(*config.Config)) {
	if path == "" {
		return
	}
	w, err := config.NewWatcher(path, logger, apply)
	if err != nil {
		logger.Warn("config watcher disabled", "path", path, "error", err)
		return
	}
	go func() {
		defer w.Close()
		w.Run(ctx)
	}()
}
