package resolve

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"eer/internal/index"
	"eer/internal/trace"
)

// Loader reads the persisted session.
type Loader interface {
	Load() (index.Index, error)
}

// TagArg reports whether args select the standalone jump mode: exactly one
// argument made only of decimal digits.
func TagArg(args []string) (string, bool) {
	if len(args) != 1 || args[0] == "" {
		return "", false
	}
	for _, r := range args[0] {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return args[0], true
}

// Jump resolves tag against the last session and opens the editor on it.
// Only an unreadable session is an error; an unknown tag or a failing
// editor is reported to errOut.
func Jump(ctx context.Context, store Loader, tag string, editor Opener, errOut io.Writer) error {
	tracer := trace.FromContext(ctx)
	ix, err := store.Load()
	if err != nil {
		return err
	}
	loc, ok := ix.Lookup(tag)
	if !ok {
		trace.Point(tracer, trace.ScopeRun, "unresolved", fmt.Sprintf("tag=%q", tag))
		return nil
	}
	trace.Point(tracer, trace.ScopeRun, "resolved", fmt.Sprintf("tag=%q %s", tag, loc))
	if err := editor.Open(ctx, loc); err != nil {
		fmt.Fprintf(errOut, "eer: %v\n", err)
	}
	return nil
}

// List prints the session's tags, default first.
func List(w io.Writer, ix index.Index) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tag := range ix.Keys() {
		label := "[" + tag + "]"
		if tag == index.DefaultTag {
			label = "default"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, ix[tag])
	}
	return tw.Flush()
}
