// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/jeranaias/chatdeck/internal/config"
)

// newTUILogger writes JSON records to chatdeck.log in the state directory.
// The terminal belongs to the interface, so a log file that cannot be
// opened means no logging at all.
func newTUILogger(level string) (*slog.Logger, func()) {
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, config.AppName+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: parseLogLevel(level)})
	return slog.New(handler), func() { f.Close() }
}

// newCLILogger writes colored records to w.
func newCLILogger(w io.Writer, level string) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      parseLogLevel(level),
		TimeFormat: "15:04:05",
	}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
