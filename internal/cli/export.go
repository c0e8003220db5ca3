// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/jeranaias/chatdeck/internal/export"
	"github.com/jeranaias/chatdeck/internal/model"
)

// ExportCmd writes one conversation to a file.
type ExportCmd struct {
	ID     int64  `arg:"" optional:"" help:"Conversation id (default: the active conversation)"`
	Format string `short:"f" default:"markdown" enum:"markdown,md,json,html,htm" help:"Output format (markdown, json, html)"`
	Output string `short:"o" type:"path" default:"." help:"Output directory"`

	NoMetadata bool   `name:"no-metadata" help:"Omit the metadata header"`
	Reasoning  bool   `help:"Keep <think> reasoning spans"`
	Theme      string `default:"dark" enum:"dark,light" help:"HTML theme (dark, light)"`
	Open       bool   `help:"Open the file after exporting"`
	All        bool   `help:"Write the whole conversation history as one JSON snapshot"`

	fs afero.Fs `kong:"-"`
}

// Run executes the export command.
func (c *ExportCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, newCLILogger(g.stderr, cfg.LogLevel))
	if err != nil {
		return err
	}
	defer a.Close()

	return c.export(g.stdout, a)
}

func (c *ExportCmd) export(out io.Writer, a *app) error {
	if c.All {
		return c.exportHistory(out, a)
	}

	var (
		conv model.Conversation
		ok   bool
	)
	if c.ID != 0 {
		conv, ok = a.store.Get(c.ID)
	} else {
		conv, ok = a.store.Active()
	}
	if !ok {
		return fmt.Errorf("conversation %d not found", c.ID)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = c.Output
	opts.IncludeMetadata = !c.NoMetadata
	opts.IncludeReasoning = c.Reasoning
	opts.Theme = strings.ToLower(c.Theme)
	opts.OpenAfterExport = c.Open

	exporter, err := export.New(c.Format, opts)
	if err != nil {
		return err
	}

	path, err := export.ExportToFile(fsOrOS(c.fs), conv, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}

// exportHistory dumps the collection in the stored chatHistory format.
func (c *ExportCmd) exportHistory(out io.Writer, a *app) error {
	snapshot, err := a.store.Snapshot()
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = c.Output
	path, err := export.WriteHistory(fsOrOS(c.fs), snapshot, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}
