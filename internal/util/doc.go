// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across chatdeck.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with the ellipsis inside the limit
//   - PrefixRunes: first N runes plus ellipsis (provisional titles)
//   - TruncateWidth, PadWidth: display-width aware helpers for table and sidebar rows
//
// File Operations:
//   - AtomicWriteFile: crash-safe write through an afero.Fs
package util
