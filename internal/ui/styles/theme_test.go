// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestNewThemeForcedBackground(t *testing.T) {
	dark := NewTheme(ThemeDark)
	assert.True(t, dark.IsDark)
	assert.Equal(t, "dark", dark.GlamourStyle())
	assert.True(t, lipgloss.HasDarkBackground())

	light := NewTheme(ThemeLight)
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.GlamourStyle())
	assert.False(t, lipgloss.HasDarkBackground())
}

func TestToggle(t *testing.T) {
	theme := NewTheme(ThemeLight)
	assert.True(t, theme.Toggle())
	assert.True(t, theme.IsDark)
	assert.False(t, theme.Toggle())
	assert.False(t, theme.IsDark)
}

func TestStylesRender(t *testing.T) {
	theme := NewTheme(ThemeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Sidebar", theme.Sidebar},
		{"UserBody", theme.UserBody},
		{"AssistantBody", theme.AssistantBody},
		{"ErrorBody", theme.ErrorBody},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"Dialog", theme.Dialog},
	}

	for _, s := range styles {
		t.Run(s.name, func(t *testing.T) {
			assert.Contains(t, s.style.Render("test"), "test")
		})
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme(ThemeDark)

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{80, LayoutMedium},
		{120, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}
