// Package resolve turns a tag typed by the user into an editor jump.
//
// Resolver runs at the end of an intercepted command, Jump serves the
// standalone `eer N` mode from the persisted session.
package resolve

import (
	"context"
	"fmt"
	"io"

	"eer/internal/index"
	"eer/internal/source"
	"eer/internal/trace"
)

// Child is the part of a running command the resolver needs.
type Child interface {
	// Finish copies the remaining output through render and returns the
	// exit status.
	Finish(w io.Writer, render func(string) string) (int, error)
}

// Opener opens an editor on a location.
type Opener interface {
	Open(ctx context.Context, loc source.Location) error
}

// Prompter asks for one tag. ok is false when the user gave no answer.
type Prompter interface {
	Ask(truncated bool) (tag string, ok bool, err error)
}

// Resolver prompts after a run and dispatches to the editor.
type Resolver struct {
	Prompter Prompter
	Editor   Opener
	// Out receives drained output and non-fatal errors.
	Out io.Writer
	// Render is applied to drained lines when the tag is not resolved.
	Render func(string) string
}

// Resolve finishes child and returns its exit status. With an empty index
// there is no prompt. A resolved tag waits for the child's real status
// before the editor opens; anything else drains the output as usual.
func (r *Resolver) Resolve(ctx context.Context, ix index.Index, truncated bool, child Child) (int, error) {
	ctx, span := trace.StartSpan(ctx, trace.ScopeRun, "resolve")
	code, err := r.resolve(ctx, ix, truncated, child)
	if err != nil {
		span.End(err.Error())
	} else {
		span.End(fmt.Sprintf("status=%d", code))
	}
	return code, err
}

func (r *Resolver) resolve(ctx context.Context, ix index.Index, truncated bool, child Child) (int, error) {
	tracer := trace.FromContext(ctx)
	if ix.Empty() {
		return child.Finish(r.Out, r.Render)
	}

	tag, ok, err := r.Prompter.Ask(truncated)
	if err != nil {
		fmt.Fprintf(r.Out, "eer: %v\n", err)
		ok = false
	}
	if ok {
		if loc, found := ix.Lookup(tag); found {
			trace.Point(tracer, trace.ScopeRun, "resolved", fmt.Sprintf("tag=%q %s", tag, loc))
			// the child must not block on a full pipe while we wait for it
			code, err := child.Finish(io.Discard, nil)
			if err != nil {
				return code, err
			}
			r.open(ctx, loc)
			return code, nil
		}
	}
	trace.Point(tracer, trace.ScopeRun, "unresolved", fmt.Sprintf("tag=%q", tag))
	return child.Finish(r.Out, r.Render)
}

// editor failures are reported, never fatal
func (r *Resolver) open(ctx context.Context, loc source.Location) {
	if err := r.Editor.Open(ctx, loc); err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeRun, "editor", err.Error())
		fmt.Fprintf(r.Out, "eer: %v\n", err)
	}
}
