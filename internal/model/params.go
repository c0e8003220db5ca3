// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"
	"strings"
)

// =============================================================================
// GENERATION PARAMETERS
// =============================================================================

// Parameter bounds, matching the sliders of the parameters panel.
const (
	MinTemperature  = 0.0
	MaxTemperature  = 2.0
	TemperatureStep = 0.1

	MinMaxTokens = 1
	MaxMaxTokens = 4096

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
)

// Params are the process-wide generation settings. They are not stored on
// any conversation.
type Params struct {
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// Clamped returns p with temperature and max tokens forced into range and
// the temperature rounded to the slider step. A blank system prompt becomes
// empty.
func (p Params) Clamped() Params {
	p.Temperature = ClampTemperature(p.Temperature)
	p.MaxTokens = ClampMaxTokens(p.MaxTokens)
	if strings.TrimSpace(p.SystemPrompt) == "" {
		p.SystemPrompt = ""
	}
	return p
}

// ClampTemperature forces t into [0, 2] in 0.1 steps.
func ClampTemperature(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultTemperature
	}
	t = math.Max(MinTemperature, math.Min(MaxTemperature, t))
	return math.Round(t*10) / 10
}

// ClampMaxTokens forces n into [1, 4096].
func ClampMaxTokens(n int) int {
	if n < MinMaxTokens {
		return MinMaxTokens
	}
	if n > MaxMaxTokens {
		return MaxMaxTokens
	}
	return n
}
