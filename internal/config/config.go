// Package config loads eer's settings from TOML or YAML.
//
// A missing file is not an error; every key has a default and a file only
// overrides what it names.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"eer/internal/editor"
	"eer/internal/grammar"
	"eer/internal/index"
	"eer/internal/session"
)

// Config is the effective configuration of a run.
type Config struct {
	Session SessionConfig `toml:"session" yaml:"session"`
	Stream  StreamConfig  `toml:"stream" yaml:"stream"`
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Grammar GrammarConfig `toml:"grammar" yaml:"grammar"`
	UI      UIConfig      `toml:"ui" yaml:"ui"`
}

// SessionConfig locates the persisted session and picks its encoding.
// Format is auto, json or msgpack; auto follows the file extension.
type SessionConfig struct {
	Path   string `toml:"path" yaml:"path"`
	Format string `toml:"format" yaml:"format"`
}

// StreamConfig bounds what is shown after the primary build error.
type StreamConfig struct {
	MaxLines int `toml:"max_lines" yaml:"max_lines"`
}

// EditorConfig is the editor argv template; see package editor for the
// placeholders it expands.
type EditorConfig struct {
	Command []string `toml:"command" yaml:"command"`
}

// GrammarConfig drives grammar selection. A program named in BuildCommands
// gets the build grammar; a program name containing an InterpreterMarkers
// entry gets the interpreter grammar.
type GrammarConfig struct {
	BuildCommands      []string `toml:"build_commands" yaml:"build_commands"`
	InterpreterMarkers []string `toml:"interpreter_markers" yaml:"interpreter_markers"`
}

// UIConfig holds the auto|on|off switches for color and the tag picker.
type UIConfig struct {
	Color  string `toml:"color" yaml:"color"`
	Picker string `toml:"picker" yaml:"picker"`
}

// Default returns the built-in configuration.
func Default() Config {
	sel := grammar.DefaultSelector()
	return Config{
		Session: SessionConfig{Path: "~/" + session.DefaultFile, Format: "auto"},
		Stream:  StreamConfig{MaxLines: index.DefaultMaxLines},
		Editor:  EditorConfig{Command: append([]string(nil), editor.DefaultCommand...)},
		Grammar: GrammarConfig{
			BuildCommands:      append([]string(nil), sel.BuildCommands...),
			InterpreterMarkers: append([]string(nil), sel.InterpreterMarkers...),
		},
		UI: UIConfig{Color: "auto", Picker: "off"},
	}
}

// Candidates lists the files tried when no --config is given, in order.
func Candidates() []string {
	out := []string{".eer.toml", ".eer.yaml"}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	if dir != "" {
		out = append(out, filepath.Join(dir, "eer", "config.toml"))
	}
	return out
}

// Resolve picks the configuration file. An explicit path must exist.
// The empty result means no file was found.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %q: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, candidate := range Candidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", nil
}

// Load reads path over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Stream.MaxLines < 1 {
		errs = append(errs, fmt.Errorf("[stream].max_lines must be at least 1, got %d", c.Stream.MaxLines))
	}
	if len(c.Editor.Command) == 0 || strings.TrimSpace(c.Editor.Command[0]) == "" {
		errs = append(errs, errors.New("[editor].command must not be empty"))
	}
	if strings.TrimSpace(c.Session.Path) == "" {
		errs = append(errs, errors.New("[session].path must not be empty"))
	}
	if _, err := session.ParseFormat(c.Session.Format); err != nil {
		errs = append(errs, fmt.Errorf("[session].format: %w", err))
	}
	if _, err := ParseMode(c.UI.Color); err != nil {
		errs = append(errs, fmt.Errorf("[ui].color: %w", err))
	}
	if _, err := ParseMode(c.UI.Picker); err != nil {
		errs = append(errs, fmt.Errorf("[ui].picker: %w", err))
	}
	return errors.Join(errs...)
}

// Selector builds the grammar selector from [grammar].
func (c Config) Selector() grammar.Selector {
	return grammar.Selector{
		BuildCommands:      c.Grammar.BuildCommands,
		InterpreterMarkers: c.Grammar.InterpreterMarkers,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
