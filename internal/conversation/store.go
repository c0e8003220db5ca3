// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/storage"
)

// persistTimeout bounds a single snapshot write.
const persistTimeout = 5 * time.Second

// =============================================================================
// STORE
// =============================================================================

// Store owns the ordered conversation collection and the active id.
//
// Every mutating operation writes the full collection to the chatHistory
// slot before it returns. Operations are total: rejected input and unknown
// ids are silent no-ops reported through the bool result, and write
// failures are logged and kept in LastPersistError.
type Store struct {
	mu sync.Mutex

	kv     storage.KV
	logger *slog.Logger
	clock  func() time.Time
	ids    IDSource

	defaultModel string

	// newest-created first
	conversations []model.Conversation
	activeID      int64
	hasActive     bool

	lastPersistErr error

	onChange []func()
	onDelete []func(id int64)
}

// Options configures a Store. Zero values pick sensible defaults.
type Options struct {
	// Logger receives persistence warnings. Default: slog.Default().
	Logger *slog.Logger

	// Clock returns the current time. Default: time.Now.
	Clock func() time.Time

	// IDs generates conversation ids. Default: snowflake node 1.
	IDs IDSource

	// DefaultModel is used for the conversation created when the loaded
	// collection is empty. Default: model.DefaultModelID.
	DefaultModel string
}

// New creates an empty store writing to kv. Call Load or use Open to
// populate it.
func New(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.IDs == nil {
		ids, err := NewSnowflakeIDs(1)
		if err != nil {
			// node 1 is always in range
			panic(err)
		}
		opts.IDs = ids
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = model.DefaultModelID
	}
	return &Store{
		kv:            kv,
		logger:        opts.Logger,
		clock:         opts.Clock,
		ids:           opts.IDs,
		defaultModel:  opts.DefaultModel,
		conversations: []model.Conversation{},
	}
}

// Open reads the chatHistory slot from kv and returns a ready store with an
// active conversation. Only a failing read is an error; absent or corrupt
// snapshots start an empty collection.
func Open(ctx context.Context, kv storage.KV, opts Options) (*Store, error) {
	s := New(kv, opts)
	blob, err := kv.Get(ctx, storage.KeyChatHistory)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	s.Load(blob)
	return s, nil
}

// Load replaces the collection with the decoded snapshot and activates its
// first record. When nothing usable was loaded a fresh conversation is
// created so an active record always exists.
func (s *Store) Load(blob []byte) {
	convs, stats, err := Decode(blob)
	if err != nil {
		s.logger.Warn("conversation history unreadable, starting empty", "error", err)
	} else if stats.DroppedRecords > 0 || stats.DroppedMessages > 0 || stats.UpgradedMessages > 0 {
		s.logger.Info("conversation history upgraded",
			"records", stats.Records,
			"dropped_records", stats.DroppedRecords,
			"dropped_messages", stats.DroppedMessages,
			"upgraded_messages", stats.UpgradedMessages)
	}

	s.mu.Lock()
	s.conversations = convs
	s.hasActive = false
	if len(convs) > 0 {
		s.activeID = convs[0].ID
		s.hasActive = true
	}
	if !s.hasActive {
		s.createLocked(s.defaultModel)
	}
	s.mu.Unlock()

	s.notify()
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create inserts an empty conversation at the front, activates it and
// returns its id.
func (s *Store) Create(defaultModel string) int64 {
	s.mu.Lock()
	id := s.createLocked(defaultModel)
	s.mu.Unlock()

	s.notify()
	return id
}

func (s *Store) createLocked(defaultModel string) int64 {
	if defaultModel == "" {
		defaultModel = s.defaultModel
	}
	id := s.ids.NextID()
	for s.indexLocked(id) >= 0 {
		id = s.ids.NextID()
	}
	conv := model.NewConversation(id, defaultModel, s.now())
	s.conversations = append([]model.Conversation{conv}, s.conversations...)
	s.activeID = id
	s.hasActive = true
	s.persistLocked()
	return id
}

// Select makes id the active conversation. Unknown ids are ignored.
func (s *Store) Select(id int64) bool {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return false
	}
	changed := s.activeID != id
	s.activeID = id
	s.hasActive = true
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return true
}

// Rename sets the trimmed name of id and stops provisional titles for it.
// Blank names and unknown ids are ignored. The timestamp is not touched.
func (s *Store) Rename(id int64, name string) bool {
	name = strings.TrimSpace(validText(name))
	if name == "" {
		return false
	}
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.conversations[idx].Name = name
	s.conversations[idx].Renamed = true
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// Delete removes id. Deleting the active conversation is a two-step
// operation: the record is removed, then a fresh one is created with
// currentModel and activated, so no caller ever observes a store without an
// active record. The snapshot is written once for the combined change.
// Delete listeners run afterwards so pending work for id can be discarded.
func (s *Store) Delete(id int64, currentModel string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.conversations = append(s.conversations[:idx:idx], s.conversations[idx+1:]...)

	if s.hasActive && s.activeID == id {
		if currentModel == "" {
			currentModel = s.defaultModel
		}
		// createLocked persists the combined state.
		s.createLocked(currentModel)
	} else {
		s.persistLocked()
	}
	deleteHooks := append([]func(int64){}, s.onDelete...)
	s.mu.Unlock()

	for _, fn := range deleteHooks {
		fn(id)
	}
	s.notify()
	return true
}

// AppendUserTurn appends a user message to id. Blank text is ignored. Until
// the conversation is renamed its name follows the latest user message.
func (s *Store) AppendUserTurn(id int64, text string) bool {
	text = validText(text)
	if strings.TrimSpace(text) == "" {
		return false
	}
	return s.mutate(id, func(c *model.Conversation) {
		c.Append(model.NewUserMessage(text), s.now())
		if !c.Renamed {
			c.Name = model.ProvisionalTitle(strings.TrimSpace(text))
		}
	})
}

// AppendAssistantTurn appends a reply produced by modelID and records
// modelID as the conversation's model.
func (s *Store) AppendAssistantTurn(id int64, content, modelID string) bool {
	content = validText(content)
	modelID = validText(modelID)
	return s.mutate(id, func(c *model.Conversation) {
		c.Append(model.NewAssistantMessage(content, modelID), s.now())
		if modelID != "" {
			c.Model = modelID
		}
	})
}

// AppendErrorTurn appends a user-visible error message.
func (s *Store) AppendErrorTurn(id int64, message string) bool {
	message = validText(message)
	return s.mutate(id, func(c *model.Conversation) {
		c.Append(model.NewErrorMessage(message), s.now())
	})
}

// SetModel records the model picked for id.
func (s *Store) SetModel(id int64, modelID string) bool {
	modelID = validText(modelID)
	if strings.TrimSpace(modelID) == "" {
		return false
	}
	return s.mutate(id, func(c *model.Conversation) {
		c.Model = modelID
	})
}

// validText replaces each invalid UTF-8 byte with U+FFFD, as the JSON
// encoder does, so the in-memory record equals its reloaded snapshot.
func validText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) mutate(id int64, fn func(c *model.Conversation)) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	fn(&s.conversations[idx])
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return true
}

// =============================================================================
// READ SIDE
// =============================================================================

// Active returns a copy of the active conversation.
func (s *Store) Active() (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasActive {
		return model.Conversation{}, false
	}
	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return model.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// ActiveID returns the active conversation id.
func (s *Store) ActiveID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.hasActive
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id int64) (model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// Conversations returns copies of all conversations, newest created first.
func (s *Store) Conversations() []model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Snapshot returns the encoded collection as it is written to storage.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Encode(s.conversations)
}

// LastPersistError returns the error of the most recent snapshot write, or
// nil if it succeeded.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPersistErr
}

// =============================================================================
// LISTENERS
// =============================================================================

// OnChange registers fn to run after every successful mutation or
// selection. Listeners run outside the store lock and may read the store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// OnDelete registers fn to run with the id of every deleted conversation.
func (s *Store) OnDelete(fn func(id int64)) {
	s.mu.Lock()
	s.onDelete = append(s.onDelete, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	hooks := append([]func(){}, s.onChange...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) indexLocked(id int64) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

// now returns the clock reading at the millisecond precision the snapshot
// keeps, so a reloaded collection compares equal to the live one.
func (s *Store) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

func (s *Store) persistLocked() {
	data, err := Encode(s.conversations)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		err = s.kv.Set(ctx, storage.KeyChatHistory, data)
		cancel()
	}
	if err != nil {
		s.logger.Error("failed to persist conversations", "error", err, "count", len(s.conversations))
	}
	s.lastPersistErr = err
}
