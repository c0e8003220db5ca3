// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case responseMsg:
		return m.handleResponse(msg)

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case prefSavedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to save dark mode", "error", msg.err)
			return m, m.setStatus("Could not save theme preference", true)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config == nil {
			return m, nil
		}
		m.applyFileParams(msg.Config.Params())
		m.showReasoning = msg.Config.UI.ShowReasoning
		m.wordWrap = msg.Config.UI.WordWrap
		m.resetRenderer()
		m.renderConversation()
		return m, m.setStatus("Configuration reloaded", false)

	case clearStatusMsg:
		if msg.set.Equal(m.statusSetAt) {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.sess.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.renderConversation()
		return m, cmd
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	if m.dialog == dialogPrompt {
		m.prompt, cmd = m.prompt.Update(msg)
	} else if m.dialog == dialogRename {
		m.rename, cmd = m.rename.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// handleResponse records a finished request on its owning conversation.
func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	outcome := m.sess.Finish(msg.req, msg.resp, msg.err)
	m.pendingOwner = 0
	m.refresh()

	switch outcome {
	case session.OutcomeFailed:
		return m, m.setStatus("Request failed", true)
	case session.OutcomeDiscarded:
		return m, m.setStatus("Reply discarded: conversation was deleted", false)
	}
	if active, _ := m.store.ActiveID(); active != msg.req.ConversationID {
		return m, m.setStatus("Reply added to another conversation", false)
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.sess.Cancel()
		return m, tea.Quit
	}

	switch m.dialog {
	case dialogRename:
		return m.handleRenameKey(msg)
	case dialogDelete:
		return m.handleDeleteKey(msg)
	case dialogPrompt:
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.sess.IsLoading() && m.sess.Cancel() {
			return m, m.setStatus("Cancelling request...", false)
		}
		if m.focus != focusInput {
			return m, m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusNext):
		return m, m.nextFocus()

	case key.Matches(msg, m.keys.NewChat):
		m.sess.NewConversation()
		m.refresh()
		return m, m.setFocus(focusInput)

	case key.Matches(msg, m.keys.Rename):
		return m.openRename(m.targetConversation())

	case key.Matches(msg, m.keys.Delete):
		return m.openDelete(m.targetConversation())

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && m.focus == focusSidebar {
			m.setFocus(focusInput)
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.ToggleParams):
		m.showParams = !m.showParams
		if !m.showParams && m.focus == focusParams {
			m.setFocus(focusInput)
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		dark := m.theme.Toggle()
		m.resetRenderer()
		m.sidebar.SetDelegate(newSidebarDelegate())
		m.renderConversation()
		return m, saveDarkModeCmd(m.prefs, dark)

	case key.Matches(msg, m.keys.EditPrompt):
		return m.openPrompt()

	case key.Matches(msg, m.keys.NextModel):
		m.cycleModel(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevModel):
		m.cycleModel(-1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusParams:
		return m.handleParamsKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.sess.SetDraft(m.input.Value())
	return m, cmd
}

// submit sends the input line. Blank input and sends while a request is
// outstanding are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	req, ok := m.sess.Prepare(text)
	if !ok {
		return m, m.setStatus("Wait for the current reply to finish", false)
	}
	m.input.Reset()
	m.pendingOwner = req.ConversationID
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, generateCmd(m.ctx, m.sess, req))
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		if id, ok := selectedConversationID(m.sidebar); ok {
			m.sess.Select(id)
			m.input.SetValue("")
			m.sess.SetDraft("")
			m.refresh()
			return m, m.setFocus(focusInput)
		}
		return m, nil
	case msg.String() == "n":
		m.sess.NewConversation()
		m.refresh()
		return m, m.setFocus(focusInput)
	case msg.String() == "r":
		id, _ := selectedConversationID(m.sidebar)
		return m.openRename(id)
	case msg.String() == "d", msg.String() == "delete":
		id, _ := selectedConversationID(m.sidebar)
		return m.openDelete(id)
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

func (m Model) handleParamsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.paramCursor = (m.paramCursor + fieldCount - 1) % fieldCount
	case key.Matches(msg, m.keys.Down):
		m.paramCursor = (m.paramCursor + 1) % fieldCount
	case key.Matches(msg, m.keys.Left):
		m.adjustParam(-1, false)
	case key.Matches(msg, m.keys.Right):
		m.adjustParam(1, false)
	case key.Matches(msg, m.keys.BigLeft):
		m.adjustParam(-1, true)
	case key.Matches(msg, m.keys.BigRight):
		m.adjustParam(1, true)
	case key.Matches(msg, m.keys.Submit):
		return m.openPrompt()
	}
	return m, nil
}

// adjustParam nudges the field under the cursor by one step in dir.
func (m *Model) adjustParam(dir int, big bool) {
	p := m.sess.Params()
	switch m.paramCursor {
	case fieldModel:
		m.cycleModel(dir)
		return
	case fieldTemperature:
		step := model.TemperatureStep
		if big {
			step = 0.5
		}
		m.sess.SetTemperature(p.Temperature + float64(dir)*step)
	case fieldMaxTokens:
		step := 1
		if big {
			step = 256
		}
		m.sess.SetMaxTokens(p.MaxTokens + dir*step)
	}
}

func (m *Model) cycleModel(step int) {
	next := model.CycleModel(m.sess.Model(), m.provider, step)
	if next == "" {
		return
	}
	m.sess.SetModel(next)
	m.refresh()
}

// targetConversation is the sidebar selection while the sidebar has focus,
// otherwise the active conversation.
func (m Model) targetConversation() int64 {
	if m.focus == focusSidebar {
		if id, ok := selectedConversationID(m.sidebar); ok {
			return id
		}
	}
	id, _ := m.store.ActiveID()
	return id
}

// applyFileParams applies the generation defaults that changed in the
// config file since the last load. Values the user adjusted in the session
// stay unless the file changed the same field.
func (m *Model) applyFileParams(next model.Params) {
	prev := m.fileParams
	m.fileParams = next

	p := m.sess.Params()
	if next.Temperature != prev.Temperature {
		p.Temperature = next.Temperature
	}
	if next.MaxTokens != prev.MaxTokens {
		p.MaxTokens = next.MaxTokens
	}
	if next.SystemPrompt != prev.SystemPrompt {
		p.SystemPrompt = next.SystemPrompt
	}
	m.sess.SetParams(p)
}
