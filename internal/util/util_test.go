// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"multibyte", "日本語のテキスト", 5, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max))
		})
	}
}

func TestPrefixRunes(t *testing.T) {
	assert.Equal(t, "Hello", PrefixRunes("Hello", 20))
	assert.Equal(t, "This is a long test ...", PrefixRunes("This is a long test text", 20))
	assert.Equal(t, "ação ...", PrefixRunes("ação do dia", 5))
	assert.Equal(t, "", PrefixRunes("abc", 0))
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "abc", TruncateWidth("abc", 5))
	assert.Equal(t, "ab...", TruncateWidth("abcdefgh", 5))
	// Each CJK rune occupies two columns
	assert.LessOrEqual(t, len([]rune(TruncateWidth("日本語日本語", 6))), 4)
	assert.Equal(t, "", TruncateWidth("abc", 0))
}

func TestPadWidthAndSingleLine(t *testing.T) {
	assert.Equal(t, "ab   ", PadWidth("ab", 5))
	assert.Equal(t, "a b c", SingleLine("a\nb\r\nc"))
}

func TestAtomicWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, AtomicWriteFile(fs, "/data/slot.json", []byte("first"), 0o600))
	require.NoError(t, AtomicWriteFile(fs, "/data/slot.json", []byte("second"), 0o600))

	got, err := afero.ReadFile(fs, "/data/slot.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
