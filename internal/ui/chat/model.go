// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/conversation"
	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/session"
	"github.com/jeranaias/chatdeck/internal/storage"
	"github.com/jeranaias/chatdeck/internal/ui/styles"
)

// =============================================================================
// FOCUS AND DIALOG STATE
// =============================================================================

// focus is the pane receiving keys.
type focus int

const (
	focusInput focus = iota
	focusSidebar
	focusParams
)

// dialog is the modal currently shown, if any.
type dialog int

const (
	dialogNone dialog = iota
	dialogRename
	dialogDelete
	dialogPrompt
)

// paramField is the row under the parameters panel cursor.
type paramField int

const (
	fieldModel paramField = iota
	fieldTemperature
	fieldMaxTokens
	fieldCount
)

const (
	paramsWidth    = 34
	minMainWidth   = 30
	statusDuration = 4 * time.Second
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat window.
type Model struct {
	ctx    context.Context
	logger *slog.Logger

	sess     *session.Session
	store    *conversation.Store
	prefs    storage.KV
	provider string

	// Styling
	theme         *styles.Theme
	renderer      *glamour.TermRenderer
	rendererWidth int
	wordWrap      int
	showReasoning bool

	// generation defaults last read from the config file
	fileParams model.Params

	// Dimensions
	width        int
	height       int
	sidebarWidth int

	// UI Components
	sidebar  list.Model
	viewport viewport.Model
	input    textinput.Model
	rename   textinput.Model
	prompt   textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	focus       focus
	dialog      dialog
	dialogID    int64
	paramCursor paramField
	showSidebar bool
	showParams  bool

	// conversation owning the outstanding request
	pendingOwner int64

	status      string
	statusErr   bool
	statusSetAt time.Time

	changes chan struct{}
}

// Options configures the chat model.
type Options struct {
	Context context.Context
	Logger  *slog.Logger

	Session *session.Session

	// Prefs receives the dark-mode preference. Nil disables saving.
	Prefs storage.KV

	Theme *styles.Theme

	// Provider is the configured provider kind, used by the model picker.
	Provider string

	// UI settings from the configuration file.
	UI config.UIConfig
}

// New creates the chat model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(opts.UI.Theme)
	}
	if opts.Provider == "" {
		opts.Provider = model.ProviderOpenAI
	}
	if opts.UI.SidebarWidth == 0 {
		opts.UI.SidebarWidth = config.Default().UI.SidebarWidth
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 0
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.Focus()

	rn := textinput.New()
	rn.Prompt = ""
	rn.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "You are a helpful assistant."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	m := Model{
		ctx:           opts.Context,
		logger:        opts.Logger,
		sess:          opts.Session,
		store:         opts.Session.Store(),
		prefs:         opts.Prefs,
		provider:      opts.Provider,
		theme:         opts.Theme,
		wordWrap:      opts.UI.WordWrap,
		showReasoning: opts.UI.ShowReasoning,
		sidebarWidth:  opts.UI.SidebarWidth,
		sidebar:       newSidebar(opts.Theme, opts.UI.SidebarWidth, 10),
		viewport:      viewport.New(80, 20),
		input:         ti,
		rename:        rn,
		prompt:        ta,
		spinner:       sp,
		help:          help.New(),
		keys:          DefaultKeyMap(),
		showSidebar:   true,
		changes:       make(chan struct{}, 1),
	}
	m.input.SetValue(m.sess.Draft())
	m.fileParams = m.sess.Params()

	changes := m.changes
	m.store.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout recomputes component sizes for the current window.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.theme.SetSize(m.width, m.height)

	mainWidth := m.mainWidth()
	bodyHeight := m.bodyHeight()

	m.sidebar.SetSize(m.sidebarWidth-2, bodyHeight-2)
	m.viewport.Width = mainWidth
	m.viewport.Height = max(1, bodyHeight-3) // header + input rows
	m.input.Width = max(10, mainWidth-4)
	m.rename.Width = max(10, min(60, m.width-10))
	m.prompt.SetWidth(max(20, min(80, m.width-10)))
	m.prompt.SetHeight(max(3, min(12, m.height-10)))
	m.help.Width = m.width

	m.renderConversation()
}

func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width-m.sidebarWidth >= minMainWidth
}

func (m Model) paramsVisible() bool {
	return m.showParams && m.width-paramsWidth-m.visibleSidebarWidth() >= minMainWidth
}

func (m Model) visibleSidebarWidth() int {
	if m.sidebarVisible() {
		return m.sidebarWidth
	}
	return 0
}

func (m Model) mainWidth() int {
	w := m.width - m.visibleSidebarWidth()
	if m.paramsVisible() {
		w -= paramsWidth
	}
	return max(minMainWidth, w)
}

// bodyHeight is the height left after the status and help lines.
func (m Model) bodyHeight() int {
	return max(5, m.height-2)
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refresh rebuilds the sidebar items and the message view from the store.
func (m *Model) refresh() {
	convs := m.store.Conversations()
	activeID, _ := m.store.ActiveID()

	cursorID, hadCursor := selectedConversationID(m.sidebar)
	items := make([]list.Item, len(convs))
	activeIdx, cursorIdx := 0, -1
	for i, c := range convs {
		items[i] = conversationItem{conv: c, active: c.ID == activeID, width: m.sidebarWidth - 4}
		if c.ID == activeID {
			activeIdx = i
		}
		if hadCursor && c.ID == cursorID {
			cursorIdx = i
		}
	}
	m.sidebar.SetItems(items)

	// Keep the cursor where the user left it while browsing the sidebar.
	if m.focus == focusSidebar && cursorIdx >= 0 {
		m.sidebar.Select(cursorIdx)
	} else {
		m.sidebar.Select(activeIdx)
	}

	m.renderConversation()
}

// setStatus shows msg in the status bar for a few seconds.
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.status = msg
	m.statusErr = isErr
	m.statusSetAt = time.Now()
	return clearStatusAfter(m.statusSetAt, statusDuration)
}

// setFocus moves key focus to f.
func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// nextFocus cycles input, sidebar and parameters, skipping hidden panes.
func (m *Model) nextFocus() tea.Cmd {
	order := []focus{focusInput}
	if m.sidebarVisible() {
		order = append(order, focusSidebar)
	}
	if m.paramsVisible() {
		order = append(order, focusParams)
	}
	for i, f := range order {
		if f == m.focus {
			return m.setFocus(order[(i+1)%len(order)])
		}
	}
	return m.setFocus(focusInput)
}
