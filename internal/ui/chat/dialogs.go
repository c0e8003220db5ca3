// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// RENAME
// =============================================================================

// openRename shows the rename dialog pre-filled with the current name.
func (m Model) openRename(id int64) (tea.Model, tea.Cmd) {
	conv, ok := m.store.Get(id)
	if !ok {
		return m, nil
	}
	m.dialog = dialogRename
	m.dialogID = id
	m.input.Blur()
	m.rename.SetValue(conv.Name)
	m.rename.CursorEnd()
	return m, m.rename.Focus()
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		// Blank names are rejected by the store.
		m.sess.Rename(m.dialogID, m.rename.Value())
		return m.closeDialog()
	case tea.KeyEsc:
		return m.closeDialog()
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

// =============================================================================
// DELETE
// =============================================================================

func (m Model) openDelete(id int64) (tea.Model, tea.Cmd) {
	if _, ok := m.store.Get(id); !ok {
		return m, nil
	}
	m.dialog = dialogDelete
	m.dialogID = id
	m.input.Blur()
	return m, nil
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if m.sess.Delete(m.dialogID) && m.pendingOwner == m.dialogID {
			m.pendingOwner = 0
		}
		return m.closeDialog()
	case key.Matches(msg, m.keys.Deny):
		return m.closeDialog()
	}
	return m, nil
}

// =============================================================================
// SYSTEM PROMPT
// =============================================================================

func (m Model) openPrompt() (tea.Model, tea.Cmd) {
	m.dialog = dialogPrompt
	m.input.Blur()
	m.prompt.SetValue(m.sess.Params().SystemPrompt)
	return m, m.prompt.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		m.sess.SetSystemPrompt(m.prompt.Value())
		statusCmd := m.setStatus("System prompt updated", false)
		next, cmd := m.closeDialog()
		return next, tea.Batch(cmd, statusCmd)
	case msg.Type == tea.KeyEsc:
		return m.closeDialog()
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// closeDialog hides the modal and returns focus to the input.
func (m Model) closeDialog() (tea.Model, tea.Cmd) {
	m.dialog = dialogNone
	m.dialogID = 0
	m.rename.Blur()
	m.prompt.Blur()
	m.refresh()
	return m, m.setFocus(focusInput)
}

// =============================================================================
// RENDERING
// =============================================================================

func (m Model) renderDialog() string {
	var box string
	switch m.dialog {
	case dialogRename:
		box = m.theme.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.DialogTitle.Render("Rename conversation"),
			m.rename.View(),
			m.theme.DialogHint.Render("Enter to save, Esc to cancel"),
		))
	case dialogDelete:
		conv, _ := m.store.Get(m.dialogID)
		box = m.theme.DialogDanger.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.DialogTitle.Render("Delete conversation?"),
			conv.Name,
			m.theme.DialogHint.Render("y to delete, n to keep"),
		))
	case dialogPrompt:
		box = m.theme.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.DialogTitle.Render("System prompt"),
			m.prompt.View(),
			m.theme.DialogHint.Render("Ctrl+S to save, Esc to cancel. Leave empty for none."),
		))
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
