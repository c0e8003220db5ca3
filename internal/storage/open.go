// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Options selects and locates a backend.
type Options struct {
	// Backend is one of Backends. Empty means BackendBolt.
	Backend string

	// Path is the data directory (file, badger) or database file (bolt,
	// sqlite). Relative names are resolved against DataDir.
	Path string

	// DataDir is the directory used when Path is empty or relative.
	DataDir string

	// RedisURL is required for BackendRedis.
	RedisURL string
}

// Open creates the KV named by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendBolt
	}
	if !IsBackend(backend) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	switch backend {
	case BackendMemory:
		return NewMemoryKV(), nil
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis backend: redis_url is required")
		}
		return OpenRedis(ctx, opts.RedisURL)
	}

	path := resolvePath(opts, backend)
	parent := path
	if backend == BackendBolt || backend == BackendSQLite {
		parent = filepath.Dir(path)
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	switch backend {
	case BackendBolt:
		return OpenBolt(path)
	case BackendBadger:
		return OpenBadger(path)
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	case BackendFile:
		return NewFileKV(afero.NewOsFs(), path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

// DefaultPath returns the location a backend uses under dataDir when no
// explicit path is configured.
func DefaultPath(dataDir, backend string) string {
	switch backend {
	case BackendBolt:
		return filepath.Join(dataDir, "chatdeck.db")
	case BackendSQLite:
		return filepath.Join(dataDir, "chatdeck.sqlite")
	case BackendBadger:
		return filepath.Join(dataDir, "badger")
	default:
		return filepath.Join(dataDir, "slots")
	}
}

func resolvePath(opts Options, backend string) string {
	if opts.Path == "" {
		return DefaultPath(opts.DataDir, backend)
	}
	if filepath.IsAbs(opts.Path) || opts.DataDir == "" {
		return opts.Path
	}
	return filepath.Join(opts.DataDir, opts.Path)
}
