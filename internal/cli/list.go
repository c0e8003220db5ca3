// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/ui/chat"
	"github.com/jeranaias/chatdeck/internal/util"
)

// ListCmd prints the conversation collection, newest first.
type ListCmd struct {
	JSON bool `help:"Print JSON instead of a table"`
}

type listEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	Messages  int       `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
	Active    bool      `json:"active"`
	Preview   string    `json:"preview,omitempty"`
}

// previewRunes bounds the first-message preview in list output.
const previewRunes = 60

// Run executes the list command.
func (c *ListCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, newCLILogger(g.stderr, cfg.LogLevel))
	if err != nil {
		return err
	}
	defer a.Close()

	return c.print(g.stdout, a)
}

func (c *ListCmd) print(out io.Writer, a *app) error {
	activeID, _ := a.store.ActiveID()
	convs := a.store.Conversations()

	entries := make([]listEntry, 0, len(convs))
	for _, conv := range convs {
		entries = append(entries, listEntry{
			ID:        conv.ID,
			Name:      conv.Name,
			Model:     conv.Model,
			Messages:  conv.MessageCount(),
			Timestamp: conv.Timestamp,
			Active:    conv.ID == activeID,
			Preview:   conv.Preview(previewRunes),
		})
	}

	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tNAME\tMODEL\tMESSAGES\tUPDATED")
	for _, e := range entries {
		marker := ""
		if e.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			marker, e.ID, util.TruncateWidth(e.Name, 40), model.DisplayName(e.Model), e.Messages, chat.FormatTimestamp(e.Timestamp))
	}
	return w.Flush()
}
