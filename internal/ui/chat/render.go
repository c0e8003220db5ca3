// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdeck/internal/model"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderConversation fills the viewport with the active conversation.
func (m *Model) renderConversation() {
	conv, ok := m.store.Active()
	if !ok {
		m.viewport.SetContent("")
		return
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	if len(conv.Messages) == 0 {
		sb.WriteString(m.theme.EmptyState.Width(width).Render(
			"\nStart the conversation by typing below.\nTab switches panes, F1 shows all keys."))
	}
	for i, msg := range conv.Messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(msg, width))
	}

	if m.sess.IsLoading() && m.pendingOwner == conv.ID {
		sb.WriteString("\n\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(m.theme.PanelLabel.Render("Generating with " + model.DisplayName(m.sess.Model()) + "..."))
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	switch msg.Role {
	case model.RoleUser:
		label := m.theme.UserLabel.Render(msg.Role.DisplayName())
		body := m.theme.UserBody.Width(width - 2).Render(msg.Content)
		return label + "\n" + body

	case model.RoleAssistant:
		name := msg.Role.DisplayName()
		if msg.Model != "" {
			name += " - " + model.DisplayName(msg.Model)
		}
		label := m.theme.AssistantLabel.Render(name)

		reasoning, answer := model.SplitReasoning(msg.Content)
		var parts []string
		if reasoning != "" && m.showReasoning {
			parts = append(parts, m.theme.Reasoning.Width(width-2).Render("thinking: "+reasoning))
		}
		parts = append(parts, m.renderMarkdown(answer, width-2))
		return label + "\n" + m.theme.AssistantBody.Render(strings.Join(parts, "\n"))

	case model.RoleSystem:
		label := m.theme.SystemLabel.Render(msg.Role.DisplayName())
		return label + "\n" + m.theme.SystemBody.Width(width-2).Render(msg.Content)

	case model.RoleError:
		return m.theme.ErrorBody.Width(width).Render("! " + msg.Content)

	default:
		return msg.Content
	}
}

// renderMarkdown renders text with glamour, falling back to wrapped plain
// text when the renderer is unavailable.
func (m *Model) renderMarkdown(text string, width int) string {
	wrap := width
	if m.wordWrap > 0 && m.wordWrap < wrap {
		wrap = m.wordWrap
	}
	if m.renderer == nil || m.rendererWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.theme.GlamourStyle()),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", "error", err)
			m.renderer = nil
			return lipgloss.NewStyle().Width(wrap).Render(text)
		}
		m.renderer = r
		m.rendererWidth = wrap
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return lipgloss.NewStyle().Width(wrap).Render(text)
	}
	return strings.Trim(out, "\n")
}

// resetRenderer drops the cached renderer after a theme change.
func (m *Model) resetRenderer() {
	m.renderer = nil
	m.rendererWidth = 0
}
