package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"eer/internal/version"
)

// exitStatus carries the process exit code out of RunE.
type exitStatus struct {
	code int
}

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// newRootCmd builds the root command with its flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eer [flags] COMMAND [ARGS...]\n  eer [flags] TAG",
		Short: "Run a build and jump to its errors",
		Long: `eer runs COMMAND, streams its output with error locations highlighted and
tagged, then asks which tag to open in the editor. The tags of the last run are
kept, so "eer 3" jumps to tag 3 later without running anything.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.String()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// флаги eer идут до команды, всё после неё принадлежит ребёнку
	rootCmd.Flags().SetInterspersed(false)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "configuration file (default: ./.eer.toml, ./.eer.yaml, $XDG_CONFIG_HOME/eer/config.toml)")
	flags.String("session", "", "session file (default ~/.last_err)")
	flags.String("session-format", "", "session file format (auto|json|msgpack)")
	flags.Int("max-lines", 0, "lines shown after the primary build error before truncating")
	flags.String("color", "", "colorize output (auto|on|off)")
	flags.String("ui", "", "tag picker (auto|on|off)")
	flags.String("editor", "", `editor command, e.g. "vim +${__LINE__} ${__FILE__}"`)
	flags.Bool("list", false, "print the tags of the last run and exit")
	flags.Bool("print-config", false, "print the effective configuration and exit")

	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|run|stream|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 0, "events kept in the trace ring buffer")
	flags.Duration("trace-heartbeat", 0, "heartbeat interval while the command runs (0 disables)")

	return rootCmd
}

// main runs the root command and maps its result to the process exit code:
// the child's status, or 1 when eer itself failed.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		var status exitStatus
		if errors.As(err, &status) {
			os.Exit(status.code)
		}
		fmt.Fprintf(os.Stderr, "eer: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
