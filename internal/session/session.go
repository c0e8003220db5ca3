// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/chatdeck/internal/conversation"
	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/provider"
)

// ErrDiscarded is returned by Execute for a request whose conversation was
// deleted before the call started.
var ErrDiscarded = errors.New("request discarded")

// errNotExecuted marks a request whose Execute never returned.
var errNotExecuted = errors.New("request did not complete")

// =============================================================================
// SESSION
// =============================================================================

// Session is the state the message view and input work against: the active
// conversation, the selected model, generation parameters, the draft text
// and the loading flag. It also runs the generation request lifecycle.
type Session struct {
	mu sync.Mutex

	store  *conversation.Store
	gen    provider.Generator
	logger *slog.Logger

	model   string
	params  model.Params
	draft   string
	loading bool

	// outstanding requests by token
	pending map[string]*Request
}

// Options configures a Session.
type Options struct {
	Logger *slog.Logger

	// Model is the initially selected model. Empty uses the active
	// conversation's model.
	Model string

	// Params are the initial generation parameters.
	Params model.Params
}

// New creates a session over store. Deleting a conversation through any
// path discards requests it owns.
func New(store *conversation.Store, gen provider.Generator, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Session{
		store:   store,
		gen:     gen,
		logger:  opts.Logger,
		model:   opts.Model,
		params:  opts.Params.Clamped(),
		pending: make(map[string]*Request),
	}
	if s.model == "" {
		if conv, ok := store.Active(); ok && conv.Model != "" {
			s.model = conv.Model
		} else {
			s.model = model.DefaultModelID
		}
	}
	store.OnDelete(s.discardOwnedBy)
	return s
}

// Store returns the underlying conversation store.
func (s *Session) Store() *conversation.Store {
	return s.store
}

// =============================================================================
// PROJECTION
// =============================================================================

// View is a consistent snapshot of the session.
type View struct {
	ConversationID int64
	Name           string
	Messages       []model.Message
	Model          string
	Params         model.Params
	Draft          string
	Loading        bool
}

// View returns the current projection.
func (s *Session) View() View {
	conv, _ := s.store.Active()

	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ConversationID: conv.ID,
		Name:           conv.Name,
		Messages:       conv.Messages,
		Model:          s.model,
		Params:         s.params,
		Draft:          s.draft,
		Loading:        s.loading,
	}
}

// IsLoading reports whether a request is outstanding.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Model returns the selected model.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel selects a model and records it on the active conversation.
func (s *Session) SetModel(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	s.mu.Lock()
	s.model = id
	s.mu.Unlock()

	if active, ok := s.store.ActiveID(); ok {
		s.store.SetModel(active, id)
	}
}

// Params returns the generation parameters.
func (s *Session) Params() model.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the generation parameters, clamping them.
func (s *Session) SetParams(p model.Params) {
	s.mu.Lock()
	s.params = p.Clamped()
	s.mu.Unlock()
}

// SetTemperature sets the temperature, clamped to [0, 2] in 0.1 steps.
func (s *Session) SetTemperature(t float64) {
	s.mu.Lock()
	s.params.Temperature = model.ClampTemperature(t)
	s.mu.Unlock()
}

// SetMaxTokens sets max tokens, clamped to [1, 4096].
func (s *Session) SetMaxTokens(n int) {
	s.mu.Lock()
	s.params.MaxTokens = model.ClampMaxTokens(n)
	s.mu.Unlock()
}

// SetSystemPrompt sets the system prompt. Blank text clears it.
func (s *Session) SetSystemPrompt(prompt string) {
	s.mu.Lock()
	if strings.TrimSpace(prompt) == "" {
		prompt = ""
	}
	s.params.SystemPrompt = prompt
	s.mu.Unlock()
}

// Draft returns the unsent input text.
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft stores the unsent input text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// =============================================================================
// NAVIGATION
// =============================================================================

// NewConversation creates and activates an empty conversation using the
// selected model.
func (s *Session) NewConversation() int64 {
	return s.store.Create(s.Model())
}

// Select activates id and adopts its model. Outstanding requests keep
// their owner and are not discarded.
func (s *Session) Select(id int64) bool {
	if !s.store.Select(id) {
		return false
	}
	if conv, ok := s.store.Get(id); ok && conv.Model != "" {
		s.mu.Lock()
		s.model = conv.Model
		s.mu.Unlock()
	}
	return true
}

// Rename renames id.
func (s *Session) Rename(id int64, name string) bool {
	return s.store.Rename(id, name)
}

// Delete removes id, creating a replacement with the selected model when it
// was active. Requests owned by id are cancelled and their results dropped.
func (s *Session) Delete(id int64) bool {
	return s.store.Delete(id, s.Model())
}
