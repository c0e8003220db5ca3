// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/conversation"
	"github.com/jeranaias/chatdeck/internal/provider"
	"github.com/jeranaias/chatdeck/internal/session"
	"github.com/jeranaias/chatdeck/internal/storage"
)

// app holds the wired components shared by the interactive and one-shot
// commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	kv      storage.KV
	store   *conversation.Store
	gen     provider.Generator
	session *session.Session
}

// openApp opens storage, loads the conversation collection and builds the
// provider and session from cfg.
func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	kv, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	gen, err := provider.New(ctx, provider.Config{
		Kind:        cfg.Provider.Kind,
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      cfg.Provider.APIKey,
		Timeout:     cfg.Timeout(),
		MaxRetries:  cfg.Provider.MaxRetries,
		MinInterval: cfg.MinInterval(),
		Logger:      logger,
	})
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("create provider: %w", err)
	}

	a, err := assemble(ctx, cfg, logger, kv, gen, conversation.Options{})
	if err != nil {
		kv.Close()
		return nil, err
	}
	return a, nil
}

// assemble loads the conversation collection from kv and builds the session.
// Logger and DefaultModel in storeOpts are filled from cfg.
func assemble(ctx context.Context, cfg *config.Config, logger *slog.Logger, kv storage.KV, gen provider.Generator, storeOpts conversation.Options) (*app, error) {
	storeOpts.Logger = logger
	storeOpts.DefaultModel = cfg.Provider.DefaultModel
	store, err := conversation.Open(ctx, kv, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}

	sess := session.New(store, gen, session.Options{
		Logger: logger,
		Params: cfg.Params(),
	})

	logger.Debug("app opened",
		"backend", cfg.Storage.Backend,
		"provider", gen.Name(),
		"conversations", store.Len())

	return &app{
		cfg:     cfg,
		logger:  logger,
		kv:      kv,
		store:   store,
		gen:     gen,
		session: sess,
	}, nil
}

// open wires the app and applies the --model flag to the session. Without
// the flag the session starts on the active conversation's model.
func (g *Globals) open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if g.Model != "" {
		a.session.SetModel(g.Model)
	}
	return a, nil
}

// Close releases the storage backend.
func (a *app) Close() error {
	if a.kv == nil {
		return nil
	}
	return a.kv.Close()
}
