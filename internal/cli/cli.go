// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/jeranaias/chatdeck/internal/config"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND TREE
// =============================================================================

// Globals are the flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" type:"path" help:"Config file (default: ${config_path})"`
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	Backend    string `short:"b" help:"Storage backend (bolt, badger, sqlite, redis, file, memory)"`
	Model      string `short:"m" help:"Model id to use"`
	Provider   string `short:"p" help:"Provider kind (openai, gemini)"`

	stdout io.Writer `kong:"-"`
	stderr io.Writer `kong:"-"`
}

// CLI is the chatdeck command line.
type CLI struct {
	Globals

	TUI     TUICmd     `cmd:"" default:"1" help:"Start the full-screen interface (default)"`
	Chat    ChatCmd    `cmd:"" help:"Start a line-mode chat session"`
	Ask     AskCmd     `cmd:"" help:"Send one prompt and print the reply"`
	List    ListCmd    `cmd:"" aliases:"ls" help:"List conversations"`
	Export  ExportCmd  `cmd:"" help:"Export a conversation to Markdown, JSON or HTML"`
	Config  ConfigCmd  `cmd:"" name:"config" help:"Inspect or change the configuration"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Run parses args and executes the selected command. It returns the
// process exit code.
func Run(ctx context.Context, args []string) int {
	var cli CLI
	cli.stdout = os.Stdout
	cli.stderr = os.Stderr
	return run(ctx, &cli, args)
}

func run(ctx context.Context, cli *CLI, args []string) int {
	parser, err := kong.New(cli,
		kong.Name(config.AppName),
		kong.Description("Terminal chat client for hosted language models"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"config_path": config.ConfigPathTOML()},
		kong.Writers(cli.stdout, cli.stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		fmt.Fprintf(cli.stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(cli.stderr, "Error: %v\n", err)
		return 2
	}

	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(cli.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and applies the global flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.Backend != "" {
		cfg.Storage.Backend = g.Backend
	}
	if g.Model != "" {
		cfg.Provider.DefaultModel = g.Model
	}
	if g.Provider != "" {
		cfg.Provider.Kind = g.Provider
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configPath is the file commands read and write.
func (g *Globals) configPath() string {
	if g.ConfigFile != "" {
		return g.ConfigFile
	}
	path, _ := config.ResolvePath()
	return path
}

// =============================================================================
// VERSION
// =============================================================================

// VersionCmd prints build information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout, "%s %s (commit %s, built %s)\n", config.AppName, Version, GitCommit, BuildDate)
	return nil
}
