// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/jeranaias/chatdeck/internal/config"
)

// ConfigCmd groups the configuration subcommands.
type ConfigCmd struct {
	Path ConfigPathCmd `cmd:"" help:"Print the config file path"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
	Init ConfigInitCmd `cmd:"" help:"Write a default config file"`
	Get  ConfigGetCmd  `cmd:"" help:"Print one value (e.g. generation.temperature)"`
	Set  ConfigSetCmd  `cmd:"" help:"Change one value in the config file"`
	Keys ConfigKeysCmd `cmd:"" help:"List the available keys"`
}

// =============================================================================
// READ
// =============================================================================

// ConfigPathCmd prints the config file location.
type ConfigPathCmd struct{}

// Run executes the config path command.
func (c *ConfigPathCmd) Run(g *Globals) error {
	path := g.configPath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(g.stdout, "%s (not created)\n", path)
		return nil
	}
	fmt.Fprintln(g.stdout, path)
	return nil
}

// ConfigShowCmd prints the effective configuration with secrets redacted.
type ConfigShowCmd struct{}

// Run executes the config show command.
func (c *ConfigShowCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprint(g.stdout, cfg.String())
	return nil
}

// ConfigGetCmd prints one effective value.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Dotted key"`
}

// Run executes the config get command.
func (c *ConfigGetCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	value, err := cfg.Get(c.Key)
	if err != nil {
		return err
	}
	if isSecretKey(c.Key) && value != "" {
		value = "[REDACTED]"
	}
	fmt.Fprintln(g.stdout, value)
	return nil
}

// ConfigKeysCmd lists every dotted key.
type ConfigKeysCmd struct{}

// Run executes the config keys command.
func (c *ConfigKeysCmd) Run(g *Globals) error {
	for _, key := range config.Keys() {
		fmt.Fprintln(g.stdout, key)
	}
	return nil
}

func isSecretKey(key string) bool {
	return strings.EqualFold(key, "provider.api_key")
}

// =============================================================================
// WRITE
// =============================================================================

// ConfigInitCmd writes the defaults to the config file.
type ConfigInitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing file"`

	fs afero.Fs `kong:"-"`
}

// Run executes the config init command.
func (c *ConfigInitCmd) Run(g *Globals) error {
	path := g.configPath()
	fs := fsOrOS(c.fs)
	if exists, _ := afero.Exists(fs, path); exists && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveTOML(fs, config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "Wrote %s\n", path)
	return nil
}

// ConfigSetCmd changes one key in the config file. Environment overrides
// are not written back.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Dotted key"`
	Value string `arg:"" help:"New value"`

	fs afero.Fs `kong:"-"`
}

// Run executes the config set command.
func (c *ConfigSetCmd) Run(g *Globals) error {
	path := g.configPath()
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return errors.New("config set only edits TOML files")
	}
	fs := fsOrOS(c.fs)

	cfg := config.Default()
	if exists, _ := afero.Exists(fs, path); exists {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := config.DecodeTOML(cfg, data); err != nil {
			return err
		}
	}

	if err := cfg.Set(c.Key, c.Value); err != nil {
		return err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", c.Key, err)
	}
	if err := config.SaveTOML(fs, cfg, path); err != nil {
		return err
	}

	value, _ := cfg.Get(c.Key)
	if isSecretKey(c.Key) {
		value = "[REDACTED]"
	}
	fmt.Fprintf(g.stdout, "%s = %v\n", c.Key, value)
	return nil
}

func fsOrOS(fs afero.Fs) afero.Fs {
	if fs == nil {
		return afero.NewOsFs()
	}
	return fs
}
