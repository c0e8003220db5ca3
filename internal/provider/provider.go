// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/chatdeck/internal/model"
)

// Configuration defaults.
const (
	// DefaultBaseURL is the OpenAI-compatible Groq endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTimeout is the default timeout for one generation request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of SDK retries for transient errors.
	DefaultMaxRetries = 2
)

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

// Request is one generation request.
type Request struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string

	// Messages in conversation order. Error turns are filtered out by
	// Sendable before the request is built.
	Messages []model.Message
}

// Sendable returns the messages a provider should see: user, assistant and
// system turns only.
func Sendable(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role.Sendable() {
			out = append(out, model.Message{Role: m.Role, Content: m.Content})
		}
	}
	return out
}

// withSystemPrompt returns msgs preceded by a system turn carrying prompt.
// A blank prompt leaves msgs unchanged.
func withSystemPrompt(prompt string, msgs []model.Message) []model.Message {
	if strings.TrimSpace(prompt) == "" {
		return msgs
	}
	out := make([]model.Message, 0, len(msgs)+1)
	out = append(out, model.NewSystemMessage(prompt))
	return append(out, msgs...)
}

// Response is the provider's reply.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator produces one assistant reply per call. Retries and timeouts are
// the implementation's responsibility.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Name implements Generator.
func (f GeneratorFunc) Name() string {
	return "func"
}

// =============================================================================
// FACTORY
// =============================================================================

// Config selects and configures a provider.
type Config struct {
	// Kind is model.ProviderOpenAI or model.ProviderGemini.
	Kind string

	// BaseURL overrides the endpoint. Empty uses DefaultBaseURL for openai
	// and the SDK default for gemini.
	BaseURL string

	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	MinInterval time.Duration

	// HTTPClient is used by the openai provider when set.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// New creates the configured provider wrapped in a send limiter.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var (
		gen Generator
		err error
	)
	switch strings.ToLower(cfg.Kind) {
	case "", model.ProviderOpenAI:
		gen = NewOpenAI(cfg)
	case model.ProviderGemini:
		gen, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	return NewLimited(gen, cfg.MinInterval), nil
}
