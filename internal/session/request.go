// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/chatdeck/internal/provider"
)

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================

// Request is one outstanding generation request. It is bound to the
// conversation that was active when it was prepared.
type Request struct {
	// Token identifies the request for cancellation.
	Token string

	// ConversationID owns the reply.
	ConversationID int64

	// Provider is the snapshot sent to the generator.
	Provider provider.Request

	cancel    context.CancelFunc
	discarded bool
}

// Outcome reports what Finish did with a result.
type Outcome int

const (
	// OutcomeReplied means an assistant message was appended.
	OutcomeReplied Outcome = iota
	// OutcomeFailed means an error message was appended.
	OutcomeFailed
	// OutcomeDiscarded means the owning conversation was deleted.
	OutcomeDiscarded
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Prepare appends text as a user turn to the active conversation and builds
// the request for it. It returns false without side effects while a request
// is outstanding or when text is blank.
func (s *Session) Prepare(text string) (*Request, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, false
	}
	// Claim the slot before touching the store so a second caller cannot
	// slip in between.
	s.loading = true
	modelID, params := s.model, s.params
	s.mu.Unlock()

	owner, ok := s.store.ActiveID()
	if !ok || !s.store.AppendUserTurn(owner, text) {
		s.setLoading(false)
		return nil, false
	}
	conv, _ := s.store.Get(owner)

	req := &Request{
		Token:          uuid.NewString(),
		ConversationID: owner,
		Provider: provider.Request{
			Model:        modelID,
			Temperature:  params.Temperature,
			MaxTokens:    params.MaxTokens,
			SystemPrompt: params.SystemPrompt,
			Messages:     provider.Sendable(conv.Messages),
		},
	}

	s.mu.Lock()
	s.pending[req.Token] = req
	s.draft = ""
	s.mu.Unlock()

	s.logger.Debug("request prepared",
		"token", req.Token,
		"conversation", owner,
		"model", modelID,
		"messages", len(req.Provider.Messages))
	return req, true
}

// Execute performs the provider call for req. Deleting the owning
// conversation cancels ctx for the call.
func (s *Session) Execute(ctx context.Context, req *Request) (provider.Response, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if req.discarded {
		s.mu.Unlock()
		return provider.Response{}, ErrDiscarded
	}
	req.cancel = cancel
	s.mu.Unlock()

	return s.gen.Generate(ctx, req.Provider)
}

// Finish records the result of req on its owning conversation and clears
// the loading flag. Results of discarded requests are dropped.
func (s *Session) Finish(req *Request, resp provider.Response, err error) Outcome {
	s.mu.Lock()
	delete(s.pending, req.Token)
	discarded := req.discarded
	req.cancel = nil
	s.loading = false
	s.mu.Unlock()

	if discarded {
		s.logger.Debug("dropping result for deleted conversation",
			"token", req.Token, "conversation", req.ConversationID)
		return OutcomeDiscarded
	}

	if err != nil {
		s.logger.Warn("generation request failed",
			"token", req.Token,
			"conversation", req.ConversationID,
			"model", req.Provider.Model,
			"error", err)
		s.store.AppendErrorTurn(req.ConversationID, provider.UserMessage(err))
		return OutcomeFailed
	}

	s.store.AppendAssistantTurn(req.ConversationID, resp.Content, req.Provider.Model)
	return OutcomeReplied
}

// Send runs Prepare, Execute and Finish. The loading flag is cleared even
// if the generator panics. ok is false when the send was rejected.
func (s *Session) Send(ctx context.Context, text string) (outcome Outcome, ok bool) {
	req, ok := s.Prepare(text)
	if !ok {
		return 0, false
	}

	var resp provider.Response
	err := errNotExecuted
	defer func() {
		outcome = s.Finish(req, resp, err)
	}()
	resp, err = s.Execute(ctx, req)
	return 0, true
}

// Cancel aborts the outstanding request, if any. Its result is recorded as
// a failed request.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelled := false
	for _, req := range s.pending {
		if req.cancel != nil {
			req.cancel()
			cancelled = true
		}
	}
	return cancelled
}

func (s *Session) discardOwnedBy(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.pending {
		if req.ConversationID != id {
			continue
		}
		req.discarded = true
		if req.cancel != nil {
			req.cancel()
		}
		s.logger.Debug("request discarded", "token", req.Token, "conversation", id)
	}
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
