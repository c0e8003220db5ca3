// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/jeranaias/chatdeck/internal/model"
)

// Gemini talks to the Google Gemini API.
type Gemini struct {
	client *genai.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini provider. Without an API key no client is
// built and Generate returns ErrNotConfigured.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gemini{logger: logger}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return g, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		cc.HTTPOptions.Timeout = &cfg.Timeout
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Name implements Generator.
func (g *Gemini) Name() string {
	return model.ProviderGemini
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if g.client == nil {
		return Response{}, ErrNotConfigured
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	var system []string
	for _, msg := range withSystemPrompt(req.SystemPrompt, req.Messages) {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)
		case model.RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case model.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		if apiErr, ok := asGenaiError(err); ok {
			return Response{}, classifyStatus(&APIError{
				Provider: g.Name(),
				Status:   apiErr.Code,
				Code:     apiErr.Status,
				Message:  apiErr.Message,
			})
		}
		return Response{}, fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Response{}, ErrEmptyResponse
	}
	out := Response{
		Content:  text,
		Model:    req.Model,
		Duration: time.Since(start),
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	g.logger.DebugContext(ctx, "gemini generation finished",
		"model", req.Model,
		"duration_ms", out.Duration.Milliseconds(),
		"prompt_tokens", out.PromptTokens,
		"completion_tokens", out.CompletionTokens)
	return out, nil
}

func asGenaiError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}
