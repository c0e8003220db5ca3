// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BACKEND CONFORMANCE
// =============================================================================

func backends(t *testing.T) map[string]func(t *testing.T) KV {
	return map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV {
			return NewMemoryKV()
		},
		"file": func(t *testing.T) KV {
			kv, err := NewFileKV(afero.NewMemMapFs(), "/data")
			require.NoError(t, err)
			return kv
		},
		"bolt": func(t *testing.T) KV {
			kv, err := OpenBolt(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return kv
		},
		"badger": func(t *testing.T) KV {
			kv, err := OpenBadger(filepath.Join(t.TempDir(), "badger"))
			require.NoError(t, err)
			return kv
		},
		"sqlite": func(t *testing.T) KV {
			kv, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
			require.NoError(t, err)
			return kv
		},
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			_, err := kv.Get(ctx, KeyChatHistory)
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

			require.NoError(t, kv.Set(ctx, KeyChatHistory, []byte(`[{"id":1}]`)))
			got, err := kv.Get(ctx, KeyChatHistory)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, string(got))

			require.NoError(t, kv.Set(ctx, KeyChatHistory, []byte(`[]`)))
			got, err = kv.Get(ctx, KeyChatHistory)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			_, err = kv.Get(ctx, KeyDarkMode)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	kv, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyDarkMode, []byte("true")))
	require.NoError(t, kv.Close())

	kv, err = OpenBolt(path)
	require.NoError(t, err)
	defer kv.Close()
	got, err := kv.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))
}

func TestRedisKV(t *testing.T) {
	url := os.Getenv("CHATDECK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CHATDECK_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	kv, err := OpenRedis(ctx, url)
	require.NoError(t, err)
	defer kv.Close()

	key := "test-" + t.Name()
	require.NoError(t, kv.Set(ctx, key, []byte("v")))
	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	_, err = kv.Get(ctx, "missing-"+t.Name())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryKVClosed(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Close())
	_, err := kv.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, kv.Set(context.Background(), "k", nil), ErrClosed)
}

func TestFileKVSanitizesKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	kv, err := NewFileKV(fs, "/data")
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "../escape", []byte("x")))
	exists, err := afero.Exists(fs, "/data/.._escape.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{"", BackendBolt, BackendSQLite, BackendFile, BackendMemory} {
		t.Run("backend="+backend, func(t *testing.T) {
			kv, err := Open(ctx, Options{Backend: backend, DataDir: filepath.Join(dir, "b-"+backend)})
			require.NoError(t, err)
			defer kv.Close()
			require.NoError(t, kv.Set(ctx, "k", []byte("v")))
		})
	}

	_, err := Open(ctx, Options{Backend: "etcd", DataDir: dir})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(ctx, Options{Backend: BackendRedis})
	assert.Error(t, err)
}

func TestIsBackend(t *testing.T) {
	assert.True(t, IsBackend("bolt"))
	assert.True(t, IsBackend(" SQLite "))
	assert.False(t, IsBackend("postgres"))
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "chatdeck.db"), DefaultPath("d", BackendBolt))
	assert.Equal(t, filepath.Join("d", "badger"), DefaultPath("d", BackendBadger))
	assert.Equal(t, filepath.Join("d", "slots"), DefaultPath("d", BackendFile))
}

// =============================================================================
// PREFERENCES
// =============================================================================

func TestDarkMode(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, found, err := LoadDarkMode(ctx, kv)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveDarkMode(ctx, kv, true))
	raw, _ := kv.Get(ctx, KeyDarkMode)
	assert.Equal(t, "true", string(raw))

	dark, found, err := LoadDarkMode(ctx, kv)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, dark)

	// JSON-quoted values written by older clients are accepted.
	require.NoError(t, kv.Set(ctx, KeyDarkMode, []byte(`"false"`)))
	dark, found, err = LoadDarkMode(ctx, kv)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, dark)

	require.NoError(t, kv.Set(ctx, KeyDarkMode, []byte("maybe")))
	_, found, err = LoadDarkMode(ctx, kv)
	require.NoError(t, err)
	assert.False(t, found)
}
