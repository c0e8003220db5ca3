// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// MODEL CATALOG
// =============================================================================

// Provider kinds understood by the provider package.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// DefaultModelID is selected when nothing else is configured.
const DefaultModelID = "llama-3.3-70b-versatile"

// ModelInfo describes an entry of the model picker.
type ModelInfo struct {
	// ID is the identifier sent to the provider
	ID string `json:"id"`

	// Name is the label shown in the picker and under assistant messages
	Name string `json:"name"`

	// Provider is the provider kind that serves this model
	Provider string `json:"provider"`
}

// Catalog lists the models offered in the picker, in display order.
var Catalog = []ModelInfo{
	{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3", Provider: ProviderOpenAI},
	{ID: "qwen-2.5-coder-32b", Name: "Qwen Coder", Provider: ProviderOpenAI},
	{ID: "deepseek-r1-distill-qwen-32b", Name: "Deepseek-R1", Provider: ProviderOpenAI},
	{ID: "deepseek-coder-32b", Name: "Gemma2", Provider: ProviderOpenAI},
	{ID: "whisper-large-v3", Name: "Whisper", Provider: ProviderOpenAI},
	{ID: "whisper-large-v3-turbo", Name: "Whisper Turbo", Provider: ProviderOpenAI},
	{ID: "qwen-2.5-32b", Name: "Qwen 2.5", Provider: ProviderOpenAI},
	{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: ProviderGemini},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: ProviderGemini},
}

// LookupModel returns the catalog entry for id.
func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// DisplayName returns the picker label for id, or id itself for models that
// are not in the catalog.
func DisplayName(id string) string {
	if m, ok := LookupModel(id); ok {
		return m.Name
	}
	return id
}

// CatalogFor returns the models served by the given provider kind.
func CatalogFor(provider string) []ModelInfo {
	var out []ModelInfo
	for _, m := range Catalog {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// CycleModel returns the model after (or before, when step is negative)
// current in the provider's catalog. Unknown ids restart at the first entry.
func CycleModel(current, provider string, step int) string {
	models := CatalogFor(provider)
	if len(models) == 0 {
		return current
	}
	idx := -1
	for i, m := range models {
		if m.ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models[0].ID
	}
	n := len(models)
	return models[((idx+step)%n+n)%n].ID
}
