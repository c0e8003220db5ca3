// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/conversation"
	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/provider"
	"github.com/jeranaias/chatdeck/internal/session"
	"github.com/jeranaias/chatdeck/internal/storage"
	"github.com/jeranaias/chatdeck/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type harness struct {
	m    Model
	sess *session.Session
	kv   *storage.MemoryKV
}

func newHarness(t *testing.T, gen provider.Generator) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := storage.NewMemoryKV()
	store, err := conversation.Open(context.Background(), kv, conversation.Options{
		Logger: logger,
		IDs:    conversation.NewSequentialIDs(1),
	})
	require.NoError(t, err)

	sess := session.New(store, gen, session.Options{
		Logger: logger,
		Model:  model.DefaultModelID,
		Params: model.DefaultParams(),
	})

	m := New(Options{
		Logger:  logger,
		Session: sess,
		Prefs:   kv,
		Theme:   styles.NewTheme(styles.ThemeDark),
		UI:      config.Default().UI,
	})

	h := &harness{m: m, sess: sess, kv: kv}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) typeText(text string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func (h *harness) press(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func echo(content string) provider.Generator {
	return provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		return provider.Response{Content: content}, nil
	})
}

// findResponse runs cmd and any batched commands until a responseMsg shows
// up. Tick commands are skipped.
func findResponse(t *testing.T, cmd tea.Cmd) responseMsg {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		done := make(chan tea.Msg, 1)
		go func() { done <- c() }()
		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(200 * time.Millisecond):
			continue
		}
		switch msg := msg.(type) {
		case responseMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatal("no responseMsg produced")
	return responseMsg{}
}

// =============================================================================
// TESTS
// =============================================================================

func TestSubmitAndReply(t *testing.T) {
	h := newHarness(t, echo("Hi there"))
	owner, _ := h.sess.Store().ActiveID()

	h.typeText("Hello")
	assert.Equal(t, "Hello", h.sess.Draft())

	cmd := h.press(tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, h.sess.IsLoading())
	assert.Empty(t, h.m.input.Value())

	resp := findResponse(t, cmd)
	h.send(resp)

	assert.False(t, h.sess.IsLoading())
	conv, _ := h.sess.Store().Get(owner)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Hello", conv.Name)
	assert.Equal(t, "Hi there", conv.Messages[1].Content)
	assert.Contains(t, h.m.View(), "Hello")
}

func TestSubmitBlankIsIgnored(t *testing.T) {
	h := newHarness(t, echo("x"))
	h.typeText("   ")
	cmd := h.press(tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.False(t, h.sess.IsLoading())
}

func TestFailedRequestShowsError(t *testing.T) {
	gen := provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		return provider.Response{}, errors.New("boom")
	})
	h := newHarness(t, gen)

	h.typeText("Hello")
	h.send(findResponse(t, h.press(tea.KeyEnter)))

	conv, _ := h.sess.Store().Active()
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleError, conv.Messages[1].Role)
	assert.True(t, h.m.statusErr)
}

func TestNewRenameDelete(t *testing.T) {
	h := newHarness(t, echo("x"))
	first, _ := h.sess.Store().ActiveID()

	h.press(tea.KeyCtrlN)
	assert.Equal(t, 2, h.sess.Store().Len())
	second, _ := h.sess.Store().ActiveID()
	assert.NotEqual(t, first, second)

	// Rename is pre-filled with the current name.
	h.press(tea.KeyCtrlR)
	require.Equal(t, dialogRename, h.m.dialog)
	assert.Equal(t, model.DefaultName, h.m.rename.Value())
	h.m.rename.SetValue("Plans")
	h.press(tea.KeyEnter)
	assert.Equal(t, dialogNone, h.m.dialog)
	conv, _ := h.sess.Store().Get(second)
	assert.Equal(t, "Plans", conv.Name)

	// Declining the delete keeps the conversation.
	h.press(tea.KeyCtrlX)
	require.Equal(t, dialogDelete, h.m.dialog)
	h.typeText("n")
	assert.Equal(t, 2, h.sess.Store().Len())

	h.press(tea.KeyCtrlX)
	h.typeText("y")
	assert.Equal(t, dialogNone, h.m.dialog)
	_, ok := h.sess.Store().Get(second)
	assert.False(t, ok)
	assert.Equal(t, 2, h.sess.Store().Len(), "deleting the active chat creates a fresh one")
}

func TestSidebarSelect(t *testing.T) {
	h := newHarness(t, echo("x"))
	first, _ := h.sess.Store().ActiveID()
	h.press(tea.KeyCtrlN)

	h.press(tea.KeyTab)
	require.Equal(t, focusSidebar, h.m.focus)
	h.press(tea.KeyDown)
	h.press(tea.KeyEnter)

	active, _ := h.sess.Store().ActiveID()
	assert.Equal(t, first, active)
	assert.Equal(t, focusInput, h.m.focus)
}

func TestParamsPanelAdjusts(t *testing.T) {
	h := newHarness(t, echo("x"))
	h.press(tea.KeyCtrlP)
	require.True(t, h.m.paramsVisible())

	h.press(tea.KeyTab) // sidebar
	h.press(tea.KeyTab) // params
	require.Equal(t, focusParams, h.m.focus)

	h.press(tea.KeyDown) // temperature
	h.press(tea.KeyRight)
	assert.InDelta(t, 0.8, h.sess.Params().Temperature, 1e-9)

	h.press(tea.KeyDown) // max tokens
	h.press(tea.KeyLeft)
	assert.Equal(t, model.DefaultMaxTokens-1, h.sess.Params().MaxTokens)

	h.press(tea.KeyUp)
	h.press(tea.KeyUp) // model
	h.press(tea.KeyRight)
	assert.NotEqual(t, model.DefaultModelID, h.sess.Model())
}

func TestThemeToggleSavesPreference(t *testing.T) {
	h := newHarness(t, echo("x"))
	require.True(t, h.m.theme.IsDark)

	cmd := h.press(tea.KeyCtrlT)
	require.NotNil(t, cmd)
	h.send(cmd())
	assert.False(t, h.m.theme.IsDark)

	dark, found, err := storage.LoadDarkMode(context.Background(), h.kv)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, dark)
}

func TestConfigReloadAppliesParams(t *testing.T) {
	h := newHarness(t, echo("x"))
	cfg := config.Default()
	cfg.Generation.Temperature = 1.5
	cfg.Generation.MaxTokens = 200
	cfg.Generation.SystemPrompt = "terse"

	h.send(ConfigReloadedMsg{Config: cfg})

	p := h.sess.Params()
	assert.InDelta(t, 1.5, p.Temperature, 1e-9)
	assert.Equal(t, 200, p.MaxTokens)
	assert.Equal(t, "terse", p.SystemPrompt)
}

func TestConfigReloadKeepsSessionAdjustments(t *testing.T) {
	h := newHarness(t, echo("x"))
	h.sess.SetTemperature(0.3)
	h.sess.SetSystemPrompt("pirate voice")

	cfg := config.Default()
	cfg.Generation.MaxTokens = 512
	h.send(ConfigReloadedMsg{Config: cfg})

	p := h.sess.Params()
	assert.InDelta(t, 0.3, p.Temperature, 1e-9)
	assert.Equal(t, "pirate voice", p.SystemPrompt)
	assert.Equal(t, 512, p.MaxTokens)

	// an unchanged file does not undo later adjustments
	h.sess.SetMaxTokens(64)
	h.send(ConfigReloadedMsg{Config: cfg})
	assert.Equal(t, 64, h.sess.Params().MaxTokens)

	// a changed field in the file wins over the session value
	cfg2 := config.Default()
	cfg2.Generation.MaxTokens = 512
	cfg2.Generation.Temperature = 1.1
	h.send(ConfigReloadedMsg{Config: cfg2})
	p = h.sess.Params()
	assert.InDelta(t, 1.1, p.Temperature, 1e-9)
	assert.Equal(t, 64, p.MaxTokens)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 5, 0, 0, time.Local)
	assert.Equal(t, "31/12/24 23:05", FormatTimestamp(ts))
	assert.Empty(t, FormatTimestamp(time.Time{}))
}
