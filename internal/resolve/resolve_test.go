package resolve

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"eer/internal/highlight"
	"eer/internal/index"
	"eer/internal/session"
	"eer/internal/source"
)

type fakeChild struct {
	rest     []string
	code     int
	finished int
	drained  string
}

func (c *fakeChild) Finish(w io.Writer, render func(string) string) (int, error) {
	c.finished++
	var b strings.Builder
	for _, line := range c.rest {
		if render != nil {
			line = render(line)
		}
		b.WriteString(line)
	}
	c.drained = b.String()
	_, _ = io.WriteString(w, c.drained)
	return c.code, nil
}

type fakeEditor struct {
	opened []source.Location
	err    error
}

func (e *fakeEditor) Open(_ context.Context, loc source.Location) error {
	e.opened = append(e.opened, loc)
	return e.err
}

type fakePrompter struct {
	tag       string
	ok        bool
	err       error
	asked     int
	truncated bool
}

func (p *fakePrompter) Ask(truncated bool) (string, bool, error) {
	p.asked++
	p.truncated = truncated
	return p.tag, p.ok, p.err
}

var fooLoc = source.Location{File: "foo.c", Line: 10, Column: 5}

func sampleIndex() index.Index {
	return index.Index{"": fooLoc, "0": fooLoc, "1": {File: "bar.h", Line: 2}}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		ix         index.Index
		prompter   *fakePrompter
		editorErr  error
		wantAsked  int
		wantOpened []source.Location
		wantOut    string
	}{
		{
			name:      "empty index skips the prompt",
			ix:        index.Index{},
			prompter:  &fakePrompter{ok: true},
			wantAsked: 0,
			wantOut:   "<rest>\n",
		},
		{
			name:       "empty input opens the default",
			ix:         sampleIndex(),
			prompter:   &fakePrompter{tag: "", ok: true},
			wantAsked:  1,
			wantOpened: []source.Location{fooLoc},
		},
		{
			name:       "numeric tag",
			ix:         sampleIndex(),
			prompter:   &fakePrompter{tag: "1", ok: true},
			wantAsked:  1,
			wantOpened: []source.Location{{File: "bar.h", Line: 2}},
		},
		{
			name:      "unknown tag drains with highlighting",
			ix:        sampleIndex(),
			prompter:  &fakePrompter{tag: "9", ok: true},
			wantAsked: 1,
			wantOut:   "<rest>\n",
		},
		{
			name:      "no answer drains",
			ix:        sampleIndex(),
			prompter:  &fakePrompter{ok: false},
			wantAsked: 1,
			wantOut:   "<rest>\n",
		},
		{
			name:      "prompt failure is reported and drains",
			ix:        sampleIndex(),
			prompter:  &fakePrompter{tag: "", ok: true, err: errors.New("tty gone")},
			wantAsked: 1,
			wantOut:   "eer: tty gone\n<rest>\n",
		},
		{
			name:       "editor failure is not fatal",
			ix:         sampleIndex(),
			prompter:   &fakePrompter{tag: "0", ok: true},
			editorErr:  errors.New("editor launch failed"),
			wantAsked:  1,
			wantOpened: []source.Location{fooLoc},
			wantOut:    "eer: editor launch failed\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := &fakeChild{rest: []string{"rest\n"}, code: 3}
			ed := &fakeEditor{err: tt.editorErr}
			var out bytes.Buffer
			r := &Resolver{
				Prompter: tt.prompter,
				Editor:   ed,
				Out:      &out,
				Render:   func(s string) string { return "<" + strings.TrimSuffix(s, "\n") + ">\n" },
			}
			code, err := r.Resolve(context.Background(), tt.ix, false, child)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if code != 3 {
				t.Errorf("code = %d, want child status 3", code)
			}
			if child.finished != 1 {
				t.Errorf("child finished %d times", child.finished)
			}
			if tt.prompter.asked != tt.wantAsked {
				t.Errorf("asked %d times, want %d", tt.prompter.asked, tt.wantAsked)
			}
			if diff := cmp.Diff(tt.wantOpened, ed.opened); diff != "" {
				t.Errorf("editor calls (-want +got):\n%s", diff)
			}
			if out.String() != tt.wantOut {
				t.Errorf("out = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestResolve_PassesTruncation(t *testing.T) {
	p := &fakePrompter{ok: false}
	r := &Resolver{Prompter: p, Editor: &fakeEditor{}, Out: io.Discard}
	if _, err := r.Resolve(context.Background(), sampleIndex(), true, &fakeChild{}); err != nil {
		t.Fatal(err)
	}
	if !p.truncated {
		t.Error("truncation flag not passed to the prompter")
	}
}

func TestLinePrompter(t *testing.T) {
	style := highlight.NewStyle(false)
	tests := []struct {
		name      string
		input     string
		truncated bool
		wantTag   string
		wantOK    bool
		wantOut   string
	}{
		{name: "return", input: "\n", wantOK: true, wantOut: PromptText},
		{name: "tag", input: "2\nmore\n", wantTag: "2", wantOK: true, wantOut: PromptText},
		{name: "crlf", input: "3\r\n", wantTag: "3", wantOK: true, wantOut: PromptText},
		{name: "spaces kept", input: " 2 \n", wantTag: " 2 ", wantOK: true, wantOut: PromptText},
		{name: "blank is not return", input: "  \n", wantTag: "  ", wantOK: true, wantOut: PromptText},
		{name: "no newline before eof", input: "4", wantTag: "4", wantOK: true, wantOut: PromptText},
		{name: "eof", input: "", wantOK: false, wantOut: PromptText + "\n"},
		{name: "truncated", input: "\n", truncated: true, wantOK: true, wantOut: "[truncated]\n\n" + PromptText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out, style)
			tag, ok, err := p.Ask(tt.truncated)
			if err != nil {
				t.Fatalf("Ask() error: %v", err)
			}
			if tag != tt.wantTag || ok != tt.wantOK {
				t.Errorf("Ask() = %q, %v, want %q, %v", tag, ok, tt.wantTag, tt.wantOK)
			}
			if out.String() != tt.wantOut {
				t.Errorf("out = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestPickerPrompter_TruncatedMarkerOnce(t *testing.T) {
	ix := index.Index{"": {File: "foo.c", Line: 1}, "0": {File: "foo.c", Line: 1}}
	var out bytes.Buffer
	p := NewPickerPrompter(strings.NewReader("0\r"), &out, highlight.NewStyle(false), ix)
	tag, ok, err := p.Ask(true)
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}
	if !ok || tag != "0" {
		t.Errorf("Ask() = %q, %v, want %q, true", tag, ok, "0")
	}
	if n := strings.Count(out.String(), "[truncated]"); n != 1 {
		t.Errorf("truncation marker written %d times:\n%s", n, out.String())
	}
	if !strings.HasPrefix(out.String(), "[truncated]\n") {
		t.Errorf("marker must precede the picker: %q", out.String())
	}
}

func TestTagArg(t *testing.T) {
	tests := []struct {
		args []string
		tag  string
		ok   bool
	}{
		{args: []string{"3"}, tag: "3", ok: true},
		{args: []string{"012"}, tag: "012", ok: true},
		{args: []string{"make"}},
		{args: []string{"-1"}},
		{args: []string{"1.5"}},
		{args: []string{""}},
		{args: []string{"3", "4"}},
		{args: nil},
	}
	for _, tt := range tests {
		tag, ok := TagArg(tt.args)
		if tag != tt.tag || ok != tt.ok {
			t.Errorf("TagArg(%q) = %q, %v", tt.args, tag, ok)
		}
	}
}

type fakeLoader struct {
	ix  index.Index
	err error
}

func (l fakeLoader) Load() (index.Index, error) { return l.ix, l.err }

func TestJump(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		ed := &fakeEditor{}
		if err := Jump(context.Background(), fakeLoader{ix: sampleIndex()}, "1", ed, io.Discard); err != nil {
			t.Fatal(err)
		}
		if len(ed.opened) != 1 || ed.opened[0].File != "bar.h" {
			t.Errorf("opened = %v", ed.opened)
		}
	})
	t.Run("unknown tag", func(t *testing.T) {
		ed := &fakeEditor{}
		if err := Jump(context.Background(), fakeLoader{ix: sampleIndex()}, "7", ed, io.Discard); err != nil {
			t.Fatal(err)
		}
		if len(ed.opened) != 0 {
			t.Errorf("editor opened for unknown tag: %v", ed.opened)
		}
	})
	t.Run("malformed session", func(t *testing.T) {
		ed := &fakeEditor{}
		err := Jump(context.Background(), fakeLoader{err: session.ErrNotFound}, "1", ed, io.Discard)
		if !errors.Is(err, session.ErrMalformed) {
			t.Fatalf("Jump() error = %v, want ErrMalformed", err)
		}
		if len(ed.opened) != 0 {
			t.Error("editor opened without a session")
		}
	})
	t.Run("editor failure", func(t *testing.T) {
		var out bytes.Buffer
		ed := &fakeEditor{err: errors.New("boom")}
		if err := Jump(context.Background(), fakeLoader{ix: sampleIndex()}, "0", ed, &out); err != nil {
			t.Fatalf("editor failure must not fail jump mode: %v", err)
		}
		if out.String() != "eer: boom\n" {
			t.Errorf("out = %q", out.String())
		}
	})
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	if err := List(&out, sampleIndex()); err != nil {
		t.Fatal(err)
	}
	want := "default  foo.c:10:5\n" +
		"[0]      foo.c:10:5\n" +
		"[1]      bar.h:2\n"
	if out.String() != want {
		t.Errorf("List() =\n%s\nwant\n%s", out.String(), want)
	}
}
