package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"eer/internal/editor"
	"eer/internal/highlight"
	"eer/internal/index"
	"eer/internal/resolve"
	"eer/internal/session"
	"eer/internal/supervisor"
	"eer/internal/trace"
)

var errNoCommand = errors.New("no command given")

// runRoot dispatches between the informational flags, jump mode and
// intercepting a command.
func runRoot(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	printConfig, err := cmd.Flags().GetBool("print-config")
	if err != nil {
		return fmt.Errorf("failed to get print-config flag: %w", err)
	}
	if printConfig {
		return s.cfg.Encode(cmd.OutOrStdout())
	}

	cleanup, err := setupTracing(cmd, s.runID)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	if list {
		ix, err := s.store().Load()
		if err != nil {
			return err
		}
		return resolve.List(cmd.OutOrStdout(), ix)
	}

	if len(args) == 0 {
		_ = cmd.Usage()
		return errNoCommand
	}
	if tag, ok := resolve.TagArg(args); ok {
		return resolve.Jump(cmd.Context(), s.store(), tag, newEditor(cmd, s), cmd.ErrOrStderr())
	}
	return runIntercept(cmd, s, args)
}

func newEditor(cmd *cobra.Command, s settings) *editor.Launcher {
	l := editor.New(s.cfg.Editor.Command)
	l.Stdin = cmd.InOrStdin()
	l.Stdout = cmd.OutOrStdout()
	l.Stderr = cmd.ErrOrStderr()
	return l
}

// runIntercept runs argv, streams its output through the index builder,
// saves the session and hands over to the resolver.
func runIntercept(cmd *cobra.Command, s settings, argv []string) error {
	tracer := trace.FromContext(cmd.Context())
	stderr := cmd.ErrOrStderr()
	style := highlight.NewStyle(useColor(s.color))
	g := s.cfg.Selector().Select(argv)

	ctx, span := trace.StartSpan(cmd.Context(), trace.ScopeRun, "run")
	span.WithExtra("run_id", s.runID).WithExtra("grammar", g.Kind.String())

	child, err := supervisor.Start(ctx, supervisor.Options{
		Argv:   argv,
		Stdin:  os.Stdin,
		Notice: cmd.OutOrStdout(),
		OnForceKill: func() {
			span.End("force-killed")
			dumpTrace(tracer, stderr)
			os.Exit(supervisor.ForceKillExitCode)
		},
	})
	if err != nil {
		span.End(err.Error())
		return err
	}
	defer child.Close()

	builder := index.NewBuilder(g, style, s.cfg.Stream.MaxLines)
	_, stream := trace.StartSpan(ctx, trace.ScopeStream, "stream")
	if _, err := child.Stream(func(line string) bool {
		out, ev, stop := builder.Feed(line)
		_, _ = io.WriteString(stderr, out)
		traceLine(tracer, line, ev)
		return stop
	}); err != nil {
		stream.End(err.Error())
		span.End(err.Error())
		return err
	}
	stream.End(fmt.Sprintf("%d tags", len(builder.Index())))
	if builder.Truncated() {
		trace.Point(tracer, trace.ScopeStream, "truncated", fmt.Sprintf("after %d lines", s.cfg.Stream.MaxLines))
	}

	ix := builder.Index()
	saveSession(tracer, s.store(), ix, stderr)

	var prompter resolve.Prompter = resolve.NewLinePrompter(cmd.InOrStdin(), stderr, style)
	if usePicker(s.picker) {
		prompter = resolve.NewPickerPrompter(cmd.InOrStdin(), stderr, style, ix)
	}
	r := &resolve.Resolver{
		Prompter: prompter,
		Editor:   newEditor(cmd, s),
		Out:      stderr,
		Render:   func(line string) string { return style.Highlight(line, g.Palette) },
	}
	code, err := r.Resolve(ctx, ix, builder.Truncated(), child)
	span.End(fmt.Sprintf("status=%d", code))
	if err != nil {
		return err
	}
	if code != 0 {
		return exitStatus{code: code}
	}
	return nil
}

func traceLine(tracer trace.Tracer, line string, ev index.Event) {
	if !tracer.Enabled() {
		return
	}
	trace.Point(tracer, trace.ScopeLine, "line", strings.TrimSuffix(line, "\n"))
	if !ev.Match.Found() {
		return
	}
	detail := fmt.Sprintf("%s %s", ev.Match.Kind, ev.Match.Location)
	if ev.Tag >= 0 {
		detail += fmt.Sprintf(" tag=%d", ev.Tag)
	}
	if ev.Default {
		detail += " default"
	}
	trace.Point(tracer, trace.ScopeStream, "match", detail)
}

// saveSession persists ix. A failed write is reported but the run goes on:
// the child's status matters more than the session.
func saveSession(tracer trace.Tracer, store *session.Store, ix index.Index, stderr io.Writer) {
	wrote, err := store.Save(ix)
	switch {
	case err != nil:
		trace.Point(tracer, trace.ScopeRun, "save", err.Error())
		fmt.Fprintf(stderr, "eer: %v\n", err)
	case wrote:
		trace.Point(tracer, trace.ScopeRun, "save", fmt.Sprintf("%d tags -> %s", len(ix), store.Path()))
	}
}
