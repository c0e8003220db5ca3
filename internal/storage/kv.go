// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"strings"
)

// =============================================================================
// SLOT KEYS
// =============================================================================

const (
	// KeyChatHistory holds the JSON array of conversation records.
	KeyChatHistory = "chatHistory"

	// KeyDarkMode holds the theme preference as "true" or "false".
	KeyDarkMode = "darkMode"
)

// =============================================================================
// KV PORT
// =============================================================================

// KV is a durable key-value slot store. Writes are synchronous: when Set
// returns nil the value survives a process restart.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying handle.
	Close() error
}

// Backend names accepted by Open and the storage.backend config key.
const (
	BackendBolt   = "bolt"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{
	BackendBolt,
	BackendBadger,
	BackendSQLite,
	BackendRedis,
	BackendFile,
	BackendMemory,
}

// IsBackend reports whether name is a supported backend.
func IsBackend(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned by Get when a key has never been written.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StorageError{Message: "key not found"}

// ErrClosed is returned after Close.
var ErrClosed = &StorageError{Message: "store is closed"}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = &StorageError{Message: "unknown storage backend"}

// StorageError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StorageError struct {
	Message string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing storage errors.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
