// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/session"
)

// ErrRequestFailed is returned by ask when the reply is an error turn.
var ErrRequestFailed = errors.New("request failed")

// AskCmd sends one prompt and prints the reply.
type AskCmd struct {
	Prompt []string `arg:"" optional:"" help:"Prompt text. Read from stdin when omitted."`

	Continue    bool     `short:"C" help:"Append to the active conversation instead of starting a new one"`
	System      string   `short:"s" help:"System prompt for this request"`
	Temperature *float64 `short:"t" help:"Temperature (0-2)"`
	MaxTokens   *int     `name:"max-tokens" help:"Maximum tokens in the reply (1-4096)"`
	Raw         bool     `help:"Print the reply without markdown rendering"`

	stdin io.Reader `kong:"-"`
}

// Run executes the ask command.
func (c *AskCmd) Run(ctx context.Context, g *Globals) error {
	prompt, err := c.readPrompt()
	if err != nil {
		return err
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := newCLILogger(g.stderr, cfg.LogLevel)

	a, err := g.open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.ask(ctx, a, g.stdout, prompt, !c.Raw && ColorEnabled())
}

func (c *AskCmd) ask(ctx context.Context, a *app, out io.Writer, prompt string, render bool) error {
	sess := a.session
	if !c.Continue {
		if active, ok := a.store.Active(); !ok || !active.IsEmpty() {
			sess.NewConversation()
		}
	}
	if c.System != "" {
		sess.SetSystemPrompt(c.System)
	}
	if c.Temperature != nil {
		sess.SetTemperature(*c.Temperature)
	}
	if c.MaxTokens != nil {
		sess.SetMaxTokens(*c.MaxTokens)
	}

	owner := sess.View().ConversationID
	outcome, ok := sess.Send(ctx, prompt)
	if !ok {
		return errors.New("prompt is empty")
	}

	conv, _ := a.store.Get(owner)
	last, _ := conv.LastMessage()
	if outcome != session.OutcomeReplied {
		return fmt.Errorf("%w: %s", ErrRequestFailed, last.Content)
	}

	_, answer := model.SplitReasoning(last.Content)
	if a.cfg.UI.ShowReasoning {
		answer = last.Content
	}
	if render {
		if r := newMarkdownRenderer(GetTerminalWidth()); r != nil {
			if rendered, err := r.Render(answer); err == nil {
				fmt.Fprint(out, rendered)
				return nil
			}
		}
	}
	fmt.Fprintln(out, answer)
	return nil
}

func (c *AskCmd) readPrompt() (string, error) {
	if len(c.Prompt) > 0 && !(len(c.Prompt) == 1 && c.Prompt[0] == "-") {
		return strings.Join(c.Prompt, " "), nil
	}
	in := c.stdin
	if in == nil {
		if IsTTY() {
			return "", errors.New("no prompt given")
		}
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", errors.New("no prompt given")
	}
	return prompt, nil
}
