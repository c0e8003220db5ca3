// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/afero"

	"github.com/jeranaias/chatdeck/internal/config"
	"github.com/jeranaias/chatdeck/internal/export"
	"github.com/jeranaias/chatdeck/internal/model"
	"github.com/jeranaias/chatdeck/internal/session"
	"github.com/jeranaias/chatdeck/internal/ui/chat"
	"github.com/jeranaias/chatdeck/internal/util"
)

type replCommand struct {
	name string
	args string
	help string
}

var replCommands = []replCommand{
	{"/new", "", "Start a new conversation"},
	{"/list", "", "List conversations"},
	{"/select", "N", "Switch to conversation N from /list"},
	{"/rename", "NAME", "Rename the current conversation"},
	{"/delete", "[N]", "Delete the current conversation or conversation N"},
	{"/history", "", "Show the current conversation"},
	{"/model", "[ID]", "Show models or switch to ID"},
	{"/temp", "[VALUE]", "Show or set the temperature (0-2)"},
	{"/tokens", "[N]", "Show or set the max tokens (1-4096)"},
	{"/system", "[TEXT|off]", "Show, set or clear the system prompt"},
	{"/export", "[FORMAT] [DIR]", "Export the current conversation (markdown, json, html)"},
	{"/help", "", "Show this help"},
	{"/quit", "", "Exit chat"},
}

// repl executes line-mode input against the session.
type repl struct {
	app      *app
	out      io.Writer
	fs       afero.Fs
	renderer *glamour.TermRenderer
}

func newREPL(a *app, out io.Writer) *repl {
	return &repl{app: a, out: out, fs: afero.NewOsFs()}
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

func (r *repl) printWelcome() {
	v := r.app.session.View()
	fmt.Fprintln(r.out, welcomeStyle.Render(config.AppName+" - terminal chat"))
	fmt.Fprintln(r.out, infoStyle.Render(fmt.Sprintf("Conversation: %s  Model: %s", v.Name, model.DisplayName(v.Model))))
	fmt.Fprintln(r.out, infoStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(r.out)
}

// handle runs one input line and reports whether the loop should exit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.send(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	sess := r.app.session

	switch strings.ToLower(cmd) {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h", "/?":
		r.printHelp()
	case "/new":
		sess.NewConversation()
		r.info("Started a new conversation.")
	case "/list", "/ls":
		r.printList()
	case "/select":
		conv, ok := r.nth(arg)
		if !ok {
			r.warn("Usage: /select N (see /list)")
			return false
		}
		sess.Select(conv.ID)
		r.info(fmt.Sprintf("Switched to %q (%s).", conv.Name, model.DisplayName(sess.Model())))
	case "/rename":
		if arg == "" {
			r.warn("Usage: /rename NAME")
			return false
		}
		id := sess.View().ConversationID
		if !sess.Rename(id, arg) {
			r.warn("Name must not be blank.")
			return false
		}
		r.info(fmt.Sprintf("Renamed to %q.", arg))
	case "/delete":
		target := sess.View().ConversationID
		if arg != "" {
			conv, ok := r.nth(arg)
			if !ok {
				r.warn("Usage: /delete [N] (see /list)")
				return false
			}
			target = conv.ID
		}
		sess.Delete(target)
		r.info(fmt.Sprintf("Deleted. Now on %q.", sess.View().Name))
	case "/history":
		r.printHistory()
	case "/model":
		r.switchModel(arg)
	case "/temp", "/temperature":
		if arg == "" {
			r.info(fmt.Sprintf("Temperature: %.1f", sess.Params().Temperature))
			return false
		}
		t, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			r.warn("Temperature must be a number between 0 and 2.")
			return false
		}
		sess.SetTemperature(t)
		r.info(fmt.Sprintf("Temperature: %.1f", sess.Params().Temperature))
	case "/tokens":
		if arg == "" {
			r.info(fmt.Sprintf("Max tokens: %d", sess.Params().MaxTokens))
			return false
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			r.warn("Max tokens must be a whole number between 1 and 4096.")
			return false
		}
		sess.SetMaxTokens(n)
		r.info(fmt.Sprintf("Max tokens: %d", sess.Params().MaxTokens))
	case "/system":
		switch {
		case arg == "":
			if p := sess.Params().SystemPrompt; p != "" {
				r.info("System prompt: " + p)
			} else {
				r.info("No system prompt set.")
			}
		case strings.EqualFold(arg, "off"):
			sess.SetSystemPrompt("")
			r.info("System prompt cleared.")
		default:
			sess.SetSystemPrompt(arg)
			r.info("System prompt set.")
		}
	case "/export":
		r.export(arg)
	default:
		r.warn(fmt.Sprintf("Unknown command %s. Type /help for commands.", cmd))
	}
	return false
}

// =============================================================================
// SENDING
// =============================================================================

func (r *repl) send(ctx context.Context, text string) {
	sess := r.app.session
	owner := sess.View().ConversationID

	fmt.Fprintln(r.out, infoStyle.Render("Thinking..."))
	outcome, ok := sess.Send(ctx, text)
	if !ok {
		r.warn("A request is already in progress.")
		return
	}

	conv, found := r.app.store.Get(owner)
	if !found || outcome == session.OutcomeDiscarded {
		return
	}
	last, ok := conv.LastMessage()
	if !ok {
		return
	}
	r.printMessage(last)
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *repl) printMessage(msg model.Message) {
	switch msg.Role {
	case model.RoleError:
		fmt.Fprintln(r.out, errorStyle.Render(msg.Content))
		fmt.Fprintln(r.out)
	case model.RoleAssistant:
		reasoning, answer := model.SplitReasoning(msg.Content)
		if reasoning != "" && r.app.cfg.UI.ShowReasoning {
			fmt.Fprintln(r.out, infoStyle.Render(reasoning))
			fmt.Fprintln(r.out)
		}
		fmt.Fprintln(r.out, commandStyle.Render(fmt.Sprintf("%s - %s", msg.Role.DisplayName(), model.DisplayName(msg.Model))))
		r.printMarkdown(answer)
	default:
		fmt.Fprintln(r.out, promptStyle.Render(msg.Role.DisplayName()))
		fmt.Fprintln(r.out, msg.Content)
		fmt.Fprintln(r.out)
	}
}

func (r *repl) printMarkdown(content string) {
	if r.renderer != nil {
		if rendered, err := r.renderer.Render(content); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, content)
	fmt.Fprintln(r.out)
}

func (r *repl) printHelp() {
	fmt.Fprintln(r.out, welcomeStyle.Render("Commands"))
	for _, c := range replCommands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(r.out, "  %s  %s\n", commandStyle.Render(util.PadWidth(usage, 24)), infoStyle.Render(c.help))
	}
	fmt.Fprintln(r.out)
}

func (r *repl) printList() {
	active := r.app.session.View().ConversationID
	for i, conv := range r.app.store.Conversations() {
		marker := " "
		if conv.ID == active {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %s  %s\n", marker, i+1,
			util.TruncateWidth(conv.Name, 40),
			infoStyle.Render(fmt.Sprintf("%s, %d messages, %s",
				model.DisplayName(conv.Model), conv.MessageCount(), chat.FormatTimestamp(conv.Timestamp))))
	}
}

func (r *repl) printHistory() {
	v := r.app.session.View()
	if len(v.Messages) == 0 {
		r.info("No messages yet.")
		return
	}
	for _, msg := range v.Messages {
		r.printMessage(msg)
	}
}

func (r *repl) switchModel(arg string) {
	sess := r.app.session
	if arg == "" {
		current := sess.Model()
		fmt.Fprintf(r.out, "Current model: %s (%s)\n", model.DisplayName(current), current)
		for _, m := range model.CatalogFor(r.app.cfg.Provider.Kind) {
			marker := " "
			if m.ID == current {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s  %s\n", marker, util.PadWidth(m.ID, 36), infoStyle.Render(m.Name))
		}
		return
	}
	if _, ok := model.LookupModel(arg); !ok {
		r.warn(fmt.Sprintf("%s is not in the catalog; sending it as-is.", arg))
	}
	sess.SetModel(arg)
	r.info("Model: " + model.DisplayName(arg))
}

func (r *repl) export(arg string) {
	fields := strings.Fields(arg)
	format := "markdown"
	dir := "."
	if len(fields) > 0 {
		format = fields[0]
	}
	if len(fields) > 1 {
		dir = fields[1]
	}

	opts := export.DefaultOptions()
	opts.OutputDir = dir
	opts.IncludeReasoning = r.app.cfg.UI.ShowReasoning
	exporter, err := export.New(format, opts)
	if err != nil {
		r.warn(err.Error())
		return
	}

	conv, _ := r.app.store.Active()
	path, err := export.ExportToFile(r.fs, conv, exporter, opts)
	if err != nil {
		r.warn(err.Error())
		return
	}
	r.info("Exported to " + path)
}

// nth resolves a 1-based position in the conversation list.
func (r *repl) nth(arg string) (model.Conversation, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.Conversation{}, false
	}
	convs := r.app.store.Conversations()
	if n < 1 || n > len(convs) {
		return model.Conversation{}, false
	}
	return convs[n-1], true
}

func (r *repl) info(msg string) {
	fmt.Fprintln(r.out, infoStyle.Render(msg))
}

func (r *repl) warn(msg string) {
	fmt.Fprintln(r.out, warningStyle.Render(msg))
}
