// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdeck/internal/model"
)

const completionJSON = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "llama-3.3-70b-versatile",
	"choices": [{"index": 0, "finish_reason": "stop",
		"message": {"role": "assistant", "content": "Hello there!"}}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAI(Config{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		MaxRetries: 0,
		Timeout:    5 * time.Second,
		Logger:     quietLogger(),
	})
}

// =============================================================================
// OPENAI PROVIDER TESTS
// =============================================================================

func TestOpenAIGenerate(t *testing.T) {
	var body map[string]any
	gen := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionJSON)
	})

	resp, err := gen.Generate(context.Background(), Request{
		Model:        "llama-3.3-70b-versatile",
		Temperature:  0.7,
		MaxTokens:    256,
		SystemPrompt: "Be brief.",
		Messages: []model.Message{
			model.NewUserMessage("Hi"),
			model.NewAssistantMessage("Hello", "m"),
			model.NewUserMessage("How are you?"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.Content)
	assert.Equal(t, 12, resp.PromptTokens)
	assert.Equal(t, 3, resp.CompletionTokens)

	assert.Equal(t, "llama-3.3-70b-versatile", body["model"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	assert.EqualValues(t, 256, body["max_completion_tokens"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	roles := make([]string, len(msgs))
	for i, m := range msgs {
		roles[i] = m.(map[string]any)["role"].(string)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
}

func TestOpenAIStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusNotFound, ErrModelNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			gen := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"error":{"message":"nope","type":"invalid_request_error","code":"bad"}}`)
			})
			_, err := gen.Generate(context.Background(), Request{Model: "m", Messages: []model.Message{model.NewUserMessage("x")}})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestOpenAIServerError(t *testing.T) {
	gen := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"message":"boom"}}`)
	})
	_, err := gen.Generate(context.Background(), Request{Model: "m"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, DefaultErrorText, UserMessage(err))
}

func TestOpenAIEmptyChoices(t *testing.T) {
	gen := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	})
	_, err := gen.Generate(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAINotConfigured(t *testing.T) {
	gen := NewOpenAI(Config{Logger: quietLogger()})
	_, err := gen.Generate(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeminiNotConfigured(t *testing.T) {
	gen, err := NewGemini(context.Background(), Config{Logger: quietLogger()})
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), Request{Model: "gemini-2.0-flash"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestSendableDropsErrorTurns(t *testing.T) {
	msgs := []model.Message{
		model.NewUserMessage("q"),
		model.NewErrorMessage("An error occurred. Please try again."),
		model.NewUserMessage("q again"),
		model.NewAssistantMessage("a", "m"),
	}
	got := Sendable(msgs)
	require.Len(t, got, 3)
	for _, m := range got {
		assert.NotEqual(t, model.RoleError, m.Role)
		assert.Empty(t, m.Model)
	}
}

func TestWithSystemPrompt(t *testing.T) {
	msgs := []model.Message{model.NewUserMessage("q")}

	got := withSystemPrompt("Be brief.", msgs)
	require.Len(t, got, 2)
	assert.Equal(t, model.RoleSystem, got[0].Role)
	assert.Equal(t, "Be brief.", got[0].Content)
	assert.Equal(t, msgs[0], got[1])

	assert.Equal(t, msgs, withSystemPrompt("   ", msgs))
}

func TestUserMessage(t *testing.T) {
	assert.Contains(t, UserMessage(ErrNotConfigured), "API key")
	assert.Contains(t, UserMessage(fmt.Errorf("wrap: %w", ErrRateLimited)), "rate limiting")
	assert.Equal(t, DefaultErrorText, UserMessage(errors.New("network down")))
}

func TestLimitedSpacesRequests(t *testing.T) {
	var calls atomic.Int32
	inner := GeneratorFunc(func(ctx context.Context, req Request) (Response, error) {
		calls.Add(1)
		return Response{Content: "ok"}, nil
	})
	lim := NewLimited(inner, 50*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := lim.Generate(context.Background(), Request{})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLimitedHonorsContext(t *testing.T) {
	inner := GeneratorFunc(func(ctx context.Context, req Request) (Response, error) {
		return Response{}, nil
	})
	lim := NewLimited(inner, time.Hour)
	_, err := lim.Generate(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = lim.Generate(ctx, Request{})
	assert.Error(t, err)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "bedrock"})
	assert.Error(t, err)

	gen, err := New(context.Background(), Config{Kind: "openai", Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderOpenAI, gen.Name())
}
