package main

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"eer/internal/config"
	"eer/internal/session"
)

// settings is the configuration after flags were applied.
type settings struct {
	cfg    config.Config
	source string
	format session.Format
	color  config.Mode
	picker config.Mode
	runID  string
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Root().PersistentFlags()

	explicit, err := flags.GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	path, err := config.Resolve(explicit)
	if err != nil {
		return settings{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return settings{}, err
	}

	if flags.Changed("session") {
		if cfg.Session.Path, err = flags.GetString("session"); err != nil {
			return settings{}, fmt.Errorf("failed to get session flag: %w", err)
		}
	}
	if flags.Changed("session-format") {
		if cfg.Session.Format, err = flags.GetString("session-format"); err != nil {
			return settings{}, fmt.Errorf("failed to get session-format flag: %w", err)
		}
	}
	if flags.Changed("max-lines") {
		if cfg.Stream.MaxLines, err = flags.GetInt("max-lines"); err != nil {
			return settings{}, fmt.Errorf("failed to get max-lines flag: %w", err)
		}
	}
	if flags.Changed("color") {
		if cfg.UI.Color, err = flags.GetString("color"); err != nil {
			return settings{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Changed("ui") {
		if cfg.UI.Picker, err = flags.GetString("ui"); err != nil {
			return settings{}, fmt.Errorf("failed to get ui flag: %w", err)
		}
	}
	if flags.Changed("editor") {
		line, err := flags.GetString("editor")
		if err != nil {
			return settings{}, fmt.Errorf("failed to get editor flag: %w", err)
		}
		if cfg.Editor.Command, err = shlex.Split(line); err != nil {
			return settings{}, fmt.Errorf("invalid --editor value %q: %w", line, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	// Validate already accepted these
	format, _ := session.ParseFormat(cfg.Session.Format)
	color, _ := config.ParseMode(cfg.UI.Color)
	picker, _ := config.ParseMode(cfg.UI.Picker)

	return settings{
		cfg:    cfg,
		source: path,
		format: format,
		color:  color,
		picker: picker,
		runID:  uuid.NewString(),
	}, nil
}

func (s settings) store() *session.Store {
	return session.NewStore(s.cfg.Session.Path, s.format)
}
