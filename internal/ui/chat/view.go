// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.dialog != dialogNone {
		return m.renderDialog()
	}

	bodyHeight := m.bodyHeight()
	var columns []string

	if m.sidebarVisible() {
		style := m.theme.Sidebar
		if m.focus == focusSidebar {
			style = m.theme.SidebarFocused
		}
		columns = append(columns, style.
			Width(m.sidebarWidth-2).
			Height(bodyHeight-2).
			Render(m.sidebar.View()))
	}

	columns = append(columns, m.renderMain(bodyHeight))

	if m.paramsVisible() {
		columns = append(columns, m.renderParams(bodyHeight))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(), m.help.View(m.keys))
}

func (m Model) renderMain(height int) string {
	width := m.mainWidth()
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		m.viewport.View(),
		m.theme.InputContainer.Width(width).Render(m.input.View()),
	)
	return lipgloss.NewStyle().Width(width).MaxHeight(height).Render(main)
}

func (m Model) renderHeader(width int) string {
	conv, _ := m.store.Active()
	modelName := m.theme.HeaderModel.Render(model.DisplayName(m.sess.Model()))
	avail := width - lipgloss.Width(modelName) - 3
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(util.SingleLine(conv.Name), max(1, avail)))
	gap := max(1, width-lipgloss.Width(title)-lipgloss.Width(modelName)-2)
	return m.theme.Header.Width(width).Render(title + strings.Repeat(" ", gap) + modelName)
}

// =============================================================================
// PARAMETERS PANEL
// =============================================================================

func (m Model) renderParams(height int) string {
	p := m.sess.Params()
	inner := paramsWidth - 4

	row := func(field paramField, label, value string) string {
		cursor := "  "
		if m.focus == focusParams && m.paramCursor == field {
			cursor = m.theme.InputPrompt.Render("> ")
		}
		return cursor + m.theme.PanelLabel.Render(util.PadWidth(label, 12)) + m.theme.PanelValue.Render(value)
	}

	lines := []string{
		m.theme.PanelTitle.Render("Parameters"),
		row(fieldModel, "Model", util.TruncateWidth(model.DisplayName(m.sess.Model()), inner-14)),
		row(fieldTemperature, "Temperature", fmt.Sprintf("%.1f", p.Temperature)),
		"  " + slider(p.Temperature/model.MaxTemperature, inner-2),
		row(fieldMaxTokens, "Max tokens", fmt.Sprintf("%d", p.MaxTokens)),
		"  " + slider(float64(p.MaxTokens)/float64(model.MaxMaxTokens), inner-2),
		"",
		m.theme.PanelLabel.Render("System prompt (C-e)"),
	}

	prompt := strings.TrimSpace(p.SystemPrompt)
	if prompt == "" {
		lines = append(lines, m.theme.EmptyState.Render("none"))
	} else {
		lines = append(lines, lipgloss.NewStyle().Width(inner).MaxHeight(6).Render(prompt))
	}

	style := m.theme.Panel
	if m.focus == focusParams {
		style = m.theme.PanelFocused
	}
	return style.
		Width(paramsWidth - 2).
		Height(height - 2).
		Render(strings.Join(lines, "\n"))
}

// slider draws a fill bar for a fraction in [0, 1].
func slider(fraction float64, width int) string {
	if width < 3 {
		return ""
	}
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width-2))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-2-filled) + "]"
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	left := m.status
	style := m.theme.StatusBar
	if m.statusErr {
		style = m.theme.StatusError
	}
	if left == "" {
		if m.sess.IsLoading() {
			left = m.spinner.View() + " waiting for reply"
		} else if err := m.store.LastPersistError(); err != nil {
			left = "Changes are not being saved"
			style = m.theme.StatusError
		} else {
			left = "Ready"
		}
	}

	right := fmt.Sprintf("%d conversations", m.store.Len())
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return style.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
