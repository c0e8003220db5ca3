// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jeranaias/chatdeck/internal/model"
)

// LoadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment are not replaced.
func LoadDotEnv() {
	for _, p := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ApplyEnvOverrides applies CHATDECK_* variables and provider API keys.
func (c *Config) ApplyEnvOverrides() {
	// CHATDECK_LOG_LEVEL
	if v := os.Getenv("CHATDECK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// CHATDECK_PROVIDER / CHATDECK_BASE_URL / CHATDECK_MODEL
	if v := os.Getenv("CHATDECK_PROVIDER"); v != "" {
		c.Provider.Kind = v
	}
	if v := os.Getenv("CHATDECK_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("CHATDECK_MODEL"); v != "" {
		c.Provider.DefaultModel = v
	}

	// CHATDECK_API_KEY wins over the provider-specific variables
	if v := os.Getenv("CHATDECK_API_KEY"); v != "" {
		c.Provider.APIKey = v
	} else if c.Provider.APIKey == "" {
		switch strings.ToLower(c.Provider.Kind) {
		case model.ProviderGemini:
			c.Provider.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		default:
			c.Provider.APIKey = firstEnv("GROQ_API_KEY", "OPENAI_API_KEY")
		}
	}

	// CHATDECK_TEMPERATURE / CHATDECK_MAX_TOKENS / CHATDECK_SYSTEM_PROMPT
	if v := os.Getenv("CHATDECK_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Generation.Temperature = f
		}
	}
	if v := os.Getenv("CHATDECK_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.MaxTokens = n
		}
	}
	if v := os.Getenv("CHATDECK_SYSTEM_PROMPT"); v != "" {
		c.Generation.SystemPrompt = v
	}

	// CHATDECK_BACKEND / CHATDECK_STORAGE_PATH / CHATDECK_REDIS_URL
	if v := os.Getenv("CHATDECK_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CHATDECK_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CHATDECK_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}

	// CHATDECK_THEME
	if v := os.Getenv("CHATDECK_THEME"); v != "" {
		c.UI.Theme = v
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
