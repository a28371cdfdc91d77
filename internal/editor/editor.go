// Package editor launches the external editor on a location.
//
// The command is an argv template; ${__FILE__}, ${__LINE__} and
// ${__COLUMN__} are substituted per argument. A missing column expands to
// the empty string.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"eer/internal/source"
)

// ErrLaunch reports an editor that failed to start or exited non-zero.
var ErrLaunch = errors.New("editor launch failed")

// DefaultCommand jumps an already running emacs to the location.
var DefaultCommand = []string{"emacsclient", "-n", "+${__LINE__}:${__COLUMN__}", "${__FILE__}"}

// Launcher runs the editor command.
type Launcher struct {
	Command []string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// New returns a Launcher attached to the process's standard streams.
func New(command []string) *Launcher {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &Launcher{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Argv expands the command template for loc.
func (l *Launcher) Argv(loc source.Location) []string {
	vars := map[string]string{
		"__FILE__":   loc.File,
		"__LINE__":   strconv.FormatUint(uint64(loc.Line), 10),
		"__COLUMN__": "",
	}
	if loc.HasColumn() {
		vars["__COLUMN__"] = strconv.FormatUint(uint64(loc.Column), 10)
	}
	argv := make([]string, 0, len(l.Command))
	for _, arg := range l.Command {
		argv = append(argv, os.Expand(arg, func(key string) string {
			if v, ok := vars[key]; ok {
				return v
			}
			return "${" + key + "}"
		}))
	}
	return argv
}

// Open runs the editor and waits for it. The editor inherits the terminal,
// so its own diagnostics reach the user directly.
func (l *Launcher) Open(ctx context.Context, loc source.Location) error {
	argv := l.Argv(loc)
	if len(argv) == 0 || argv[0] == "" {
		return fmt.Errorf("%w: empty editor command", ErrLaunch)
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, strings.Join(argv, " "), err)
	}
	return nil
}
