package main

import (
	"os"

	"eer/internal/config"
)

// useColor decides coloring for the stream written to stderr.
func useColor(mode config.Mode) bool {
	return mode.Enabled(isTerminal(os.Stderr))
}

// usePicker decides whether the tag picker replaces the line prompt. The
// picker needs a terminal on both ends, even when forced on.
func usePicker(mode config.Mode) bool {
	tty := isTerminal(os.Stdin) && isTerminal(os.Stderr)
	return tty && mode.Enabled(tty)
}
