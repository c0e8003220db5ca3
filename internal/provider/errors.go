// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error variables for common provider errors.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("provider API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired API key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse indicates the provider answered without any content.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// APIError represents a non-2xx answer from a provider API.
type APIError struct {
	Provider string
	Status   int
	Code     string
	Message  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error [%s] (HTTP %d): %s", e.Provider, e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.Status, e.Message)
}

// classifyStatus maps well-known HTTP statuses onto the sentinel errors and
// keeps the API error in the chain for logging.
func classifyStatus(apiErr *APIError) error {
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthFailed, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrModelNotFound, apiErr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	default:
		return apiErr
	}
}

// DefaultErrorText is the error turn shown for failures without a more
// specific explanation.
const DefaultErrorText = "An error occurred. Please try again."

// UserMessage returns the text of the error turn recorded for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "No API key configured. Set GROQ_API_KEY (or GEMINI_API_KEY) and try again."
	case errors.Is(err, ErrAuthFailed):
		return "Authentication failed. Check your API key and try again."
	case errors.Is(err, ErrRateLimited):
		return "The provider is rate limiting requests. Please wait a moment and try again."
	case errors.Is(err, ErrModelNotFound):
		return "The selected model is not available. Pick another model and try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	default:
		return DefaultErrorText
	}
}
