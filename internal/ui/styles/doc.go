// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colors and lipgloss styles of the chatdeck TUI.

All colors are lipgloss AdaptiveColor values. Theme.SetDark tells lipgloss
which variant to use, so the light/dark toggle re-renders every style
without the terminal being asked again.

# Usage

	theme := styles.NewTheme("auto")
	theme.Toggle()
	r, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))
*/
package styles
