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

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/jeranaias/chatdeck/internal/model"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint. The
// default endpoint is Groq.
type OpenAI struct {
	client     openai.Client
	configured bool
	logger     *slog.Logger
}

// NewOpenAI creates an OpenAI-compatible provider. A missing API key is not
// an error here; Generate returns ErrNotConfigured instead.
func NewOpenAI(cfg Config) *OpenAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(maxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAI{
		client:     openai.NewClient(opts...),
		configured: strings.TrimSpace(cfg.APIKey) != "",
		logger:     logger,
	}
}

// Name implements Generator.
func (o *OpenAI) Name() string {
	return model.ProviderOpenAI
}

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	if !o.configured {
		return Response{}, ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    convertMessages(req.SystemPrompt, req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, classifyStatus(&APIError{
				Provider: o.Name(),
				Status:   apiErr.StatusCode,
				Code:     apiErr.Code,
				Message:  apiErr.Message,
			})
		}
		return Response{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, ErrEmptyResponse
	}

	out := Response{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		Duration:         time.Since(start),
	}
	o.logger.DebugContext(ctx, "chat completion finished",
		"model", req.Model,
		"duration_ms", out.Duration.Milliseconds(),
		"prompt_tokens", out.PromptTokens,
		"completion_tokens", out.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)
	return out, nil
}

func convertMessages(systemPrompt string, msgs []model.Message) []openai.ChatCompletionMessageParamUnion {
	msgs = withSystemPrompt(systemPrompt, msgs)
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleUser:
			result = append(result, openai.UserMessage(msg.Content))
		case model.RoleAssistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		}
	}
	return result
}
