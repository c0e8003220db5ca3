// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdeck/internal/conversation"
	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/provider"
	"github.com/jeranaias/chatdeck/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// blockingGen records requests and waits for a result on release.
type blockingGen struct {
	mu       sync.Mutex
	requests []provider.Request
	started  chan struct{}
	release  chan result
}

type result struct {
	resp provider.Response
	err  error
}

func newBlockingGen() *blockingGen {
	return &blockingGen{
		started: make(chan struct{}, 8),
		release: make(chan result, 8),
	}
}

func (g *blockingGen) Name() string { return "blocking" }

func (g *blockingGen) Generate(ctx context.Context, req provider.Request) (provider.Response, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	g.started <- struct{}{}

	select {
	case r := <-g.release:
		return r.resp, r.err
	case <-ctx.Done():
		return provider.Response{}, ctx.Err()
	}
}

func (g *blockingGen) last() provider.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func replyWith(content string) provider.Generator {
	return provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		return provider.Response{Content: content, Model: req.Model}, nil
	})
}

func newTestSession(t *testing.T, gen provider.Generator) *Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := conversation.Open(context.Background(), storage.NewMemoryKV(), conversation.Options{
		Logger: logger,
		IDs:    conversation.NewSequentialIDs(1),
	})
	require.NoError(t, err)
	return New(store, gen, Options{
		Logger: logger,
		Model:  "llama-3.1-8b-instant",
		Params: model.DefaultParams(),
	})
}

// sendAsync runs Send in a goroutine and waits until the generator has
// been entered.
func sendAsync(t *testing.T, s *Session, g *blockingGen, text string) <-chan Outcome {
	t.Helper()
	done := make(chan Outcome, 1)
	go func() {
		out, ok := s.Send(context.Background(), text)
		assert.True(t, ok)
		done <- out
	}()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("generator was not called")
	}
	return done
}

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("send did not finish")
		return 0
	}
}

// =============================================================================
// SEND
// =============================================================================

func TestSendSuccess(t *testing.T) {
	s := newTestSession(t, replyWith("Hi there"))
	s.SetDraft("Hello")

	out, ok := s.Send(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, OutcomeReplied, out)

	v := s.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Draft)
	assert.Equal(t, "Hello", v.Name)
	require.Len(t, v.Messages, 2)
	assert.Equal(t, model.RoleUser, v.Messages[0].Role)
	assert.Equal(t, "Hello", v.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, v.Messages[1].Role)
	assert.Equal(t, "Hi there", v.Messages[1].Content)
	assert.Equal(t, "llama-3.1-8b-instant", v.Messages[1].Model)
}

func TestSendFailureAppendsOneErrorTurn(t *testing.T) {
	gen := provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		return provider.Response{}, errors.New("connection reset")
	})
	s := newTestSession(t, gen)

	out, ok := s.Send(context.Background(), "Hello")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, out)

	v := s.View()
	assert.False(t, v.Loading)
	require.Len(t, v.Messages, 2)
	assert.Equal(t, model.RoleError, v.Messages[1].Role)
	assert.Equal(t, provider.DefaultErrorText, v.Messages[1].Content)
}

func TestErrorTurnsAreNotResent(t *testing.T) {
	calls := 0
	var lastReq provider.Request
	gen := provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		calls++
		lastReq = req
		if calls == 1 {
			return provider.Response{}, provider.ErrRateLimited
		}
		return provider.Response{Content: "ok"}, nil
	})
	s := newTestSession(t, gen)

	_, ok := s.Send(context.Background(), "first")
	require.True(t, ok)
	_, ok = s.Send(context.Background(), "second")
	require.True(t, ok)

	require.Len(t, lastReq.Messages, 2)
	for _, m := range lastReq.Messages {
		assert.Equal(t, model.RoleUser, m.Role)
	}
	assert.Len(t, s.View().Messages, 4)
}

func TestRequestCarriesParams(t *testing.T) {
	gen := newBlockingGen()
	s := newTestSession(t, gen)
	s.SetTemperature(1.26)
	s.SetMaxTokens(99999)
	s.SetSystemPrompt("be brief")
	s.SetModel("gemma2")

	done := sendAsync(t, s, gen, "Hello")
	req := gen.last()
	gen.release <- result{resp: provider.Response{Content: "ok"}}
	waitOutcome(t, done)

	assert.Equal(t, "gemma2", req.Model)
	assert.InDelta(t, 1.3, req.Temperature, 1e-9)
	assert.Equal(t, model.MaxMaxTokens, req.MaxTokens)
	assert.Equal(t, "be brief", req.SystemPrompt)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "Hello", req.Messages[0].Content)
}

func TestRejectsBlankAndConcurrentSends(t *testing.T) {
	gen := newBlockingGen()
	s := newTestSession(t, gen)

	_, ok := s.Send(context.Background(), "   ")
	assert.False(t, ok)
	assert.Empty(t, s.View().Messages)

	done := sendAsync(t, s, gen, "first")
	assert.True(t, s.IsLoading())

	_, ok = s.Prepare("second")
	assert.False(t, ok, "a second request must wait for the first")
	assert.Len(t, s.View().Messages, 1)

	gen.release <- result{resp: provider.Response{Content: "done"}}
	assert.Equal(t, OutcomeReplied, waitOutcome(t, done))
	assert.False(t, s.IsLoading())
}

func TestGeneratorPanicClearsLoading(t *testing.T) {
	gen := provider.GeneratorFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		panic("boom")
	})
	s := newTestSession(t, gen)

	assert.Panics(t, func() {
		s.Send(context.Background(), "Hello")
	})
	assert.False(t, s.IsLoading())

	msgs := s.View().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleError, msgs[1].Role)
}

// =============================================================================
// OWNERSHIP
// =============================================================================

func TestReplyLandsOnOwnerAfterNavigation(t *testing.T) {
	gen := newBlockingGen()
	s := newTestSession(t, gen)
	owner, _ := s.Store().ActiveID()

	done := sendAsync(t, s, gen, "question")
	other := s.NewConversation()
	require.NotEqual(t, owner, other)

	gen.release <- result{resp: provider.Response{Content: "answer"}}
	assert.Equal(t, OutcomeReplied, waitOutcome(t, done))

	ownerConv, ok := s.Store().Get(owner)
	require.True(t, ok)
	require.Len(t, ownerConv.Messages, 2)
	assert.Equal(t, "answer", ownerConv.Messages[1].Content)

	otherConv, _ := s.Store().Get(other)
	assert.Empty(t, otherConv.Messages)
	assert.Equal(t, other, s.View().ConversationID)
}

func TestDeleteDuringRequestDiscardsReply(t *testing.T) {
	gen := newBlockingGen()
	s := newTestSession(t, gen)
	owner, _ := s.Store().ActiveID()

	done := sendAsync(t, s, gen, "question")
	require.True(t, s.Delete(owner))

	assert.Equal(t, OutcomeDiscarded, waitOutcome(t, done))
	assert.False(t, s.IsLoading())

	_, ok := s.Store().Get(owner)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Store().Len())
	assert.Empty(t, s.View().Messages)
}

func TestCancelRecordsFailure(t *testing.T) {
	gen := newBlockingGen()
	s := newTestSession(t, gen)

	done := sendAsync(t, s, gen, "question")
	assert.True(t, s.Cancel())

	assert.Equal(t, OutcomeFailed, waitOutcome(t, done))
	msgs := s.View().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "The request was cancelled.", msgs[1].Content)
}

// =============================================================================
// STATE
// =============================================================================

func TestSelectAdoptsConversationModel(t *testing.T) {
	s := newTestSession(t, replyWith("ok"))
	first, _ := s.Store().ActiveID()
	s.SetModel("mixtral-8x7b-32768")

	second := s.NewConversation()
	s.SetModel("gemma2")

	require.True(t, s.Select(first))
	assert.Equal(t, "mixtral-8x7b-32768", s.Model())

	require.True(t, s.Select(second))
	assert.Equal(t, "gemma2", s.Model())

	assert.False(t, s.Select(424242))
}

func TestParamsClamp(t *testing.T) {
	s := newTestSession(t, replyWith("ok"))

	s.SetTemperature(-3)
	s.SetMaxTokens(0)
	p := s.Params()
	assert.Equal(t, model.MinTemperature, p.Temperature)
	assert.Equal(t, model.MinMaxTokens, p.MaxTokens)

	s.SetParams(model.Params{Temperature: 9, MaxTokens: 10, SystemPrompt: "x"})
	p = s.Params()
	assert.Equal(t, model.MaxTemperature, p.Temperature)
	assert.Equal(t, 10, p.MaxTokens)

	s.SetSystemPrompt("   ")
	assert.Empty(t, s.Params().SystemPrompt)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "replied", OutcomeReplied.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "discarded", OutcomeDiscarded.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
