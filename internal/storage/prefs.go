// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// LoadDarkMode reads the darkMode slot. found is false when the slot has
// never been written or does not hold a boolean, in which case the caller
// picks its own default.
func LoadDarkMode(ctx context.Context, kv KV) (dark bool, found bool, err error) {
	data, err := kv.Get(ctx, KeyDarkMode)
	if errors.Is(err, ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	v, perr := strconv.ParseBool(strings.Trim(strings.TrimSpace(string(data)), `"`))
	if perr != nil {
		return false, false, nil
	}
	return v, true, nil
}

// SaveDarkMode writes the darkMode slot as "true" or "false".
func SaveDarkMode(ctx context.Context, kv KV, dark bool) error {
	return kv.Set(ctx, KeyDarkMode, []byte(strconv.FormatBool(dark)))
}
