package index

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"eer/internal/grammar"
	"eer/internal/highlight"
	"eer/internal/source"
)

func feedAll(b *Builder, lines ...string) (out []string, stopped bool) {
	for _, line := range lines {
		text, _, stop := b.Feed(line)
		out = append(out, text)
		if stop {
			return out, true
		}
	}
	return out, false
}

func TestBuilder_GenericEndToEnd(t *testing.T) {
	b := NewBuilder(grammar.Generic(), highlight.NewStyle(true), 0)
	out, _, stop := b.Feed("foo.c:10:5: error: bad thing\n")
	if stop {
		t.Fatal("generic grammar never stops")
	}

	red := color.New(color.FgRed, color.Bold)
	red.EnableColor()
	wantOut := "foo.c:10:5: " + red.Sprint("error: ") + "bad thing\n"
	if out != wantOut {
		t.Errorf("output = %q, want %q", out, wantOut)
	}

	loc := source.Location{File: "foo.c", Line: 10, Column: 5}
	want := Index{"": loc, "0": loc}
	if diff := cmp.Diff(want, b.Index()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	got, ok := b.Index().Lookup("")
	if !ok || got != loc {
		t.Errorf("default lookup = %+v, %v", got, ok)
	}
}

func TestBuilder_GenericTagsAfterFirstAreAnnotated(t *testing.T) {
	b := NewBuilder(grammar.Generic(), highlight.NewStyle(false), 0)
	out, _ := feedAll(b,
		"a.c:1:1: error: one\n",
		"plain text\n",
		"b.c:2:2: warning: two\n",
		"c.c:3: note three\n",
	)

	if strings.Contains(out[0], "[0]") {
		t.Errorf("first match must not be annotated: %q", out[0])
	}
	if out[1] != "plain text\n" {
		t.Errorf("plain line changed: %q", out[1])
	}
	if out[2] != "b.c:2:2: warning: two [1]\n" {
		t.Errorf("second match = %q", out[2])
	}
	if out[3] != "c.c:3: note three [2]\n" {
		t.Errorf("third match = %q", out[3])
	}

	ix := b.Index()
	if ix[""] != ix["0"] {
		t.Errorf("default %+v != tag 0 %+v", ix[""], ix["0"])
	}
	if diff := cmp.Diff([]string{"", "0", "1", "2"}, ix.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestBuilder_BuildSystemTrailThenPrimary(t *testing.T) {
	b := NewBuilder(grammar.BuildSystem(), highlight.NewStyle(false), 0)
	out, stopped := feedAll(b,
		"In file included from main.cpp:1:\n",
		"vec.h: In instantiation of 'void f()':\n",
		"main.cpp:8:4:   required from here\n",
		"vec.h:30:2:   required from 'g()'\n",
		"vec.h:12:9: error: no matching function\n",
		"lib.h:1:1:   required from here\n",
		"other.cpp:5:5: error: unrelated\n",
	)
	if stopped {
		t.Fatal("unexpected truncation")
	}
	if out[2] != "main.cpp:8:4:   required from here [1]\n" {
		t.Errorf("trail line = %q", out[2])
	}
	if strings.Contains(out[5], "[") || strings.Contains(out[6], "[3]") {
		t.Errorf("draining lines must not be tagged: %q %q", out[5], out[6])
	}
	if b.State() != grammar.StateDraining {
		t.Errorf("state = %v, want draining", b.State())
	}

	want := Index{
		"":  {File: "vec.h", Line: 12, Column: 9},
		"1": {File: "main.cpp", Line: 8, Column: 4},
		"2": {File: "vec.h", Line: 30, Column: 2},
	}
	if diff := cmp.Diff(want, b.Index()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_BuildSystemTruncation(t *testing.T) {
	const budget = 4
	b := NewBuilder(grammar.BuildSystem(), highlight.NewStyle(false), budget)

	lines := []string{"a.c:1:1: error: first\n"}
	for i := range 100 {
		lines = append(lines, fmt.Sprintf("x.h:%d:1: error: noise %d\n", i+1, i))
	}
	out, stopped := feedAll(b, lines...)
	if !stopped || !b.Truncated() {
		t.Fatalf("stopped=%v truncated=%v, want both", stopped, b.Truncated())
	}
	// primary line plus the full budget of drained lines
	if len(out) != 1+budget {
		t.Errorf("emitted %d lines, want %d", len(out), 1+budget)
	}
	if len(b.Index()) != 1 {
		t.Errorf("index = %v, want only the default entry", b.Index())
	}

	text, _, stop := b.Feed("late line\n")
	if text != "" || !stop {
		t.Errorf("Feed after truncation = %q, %v", text, stop)
	}
}

func TestBuilder_BuildSystemNoTruncationWhileScanning(t *testing.T) {
	b := NewBuilder(grammar.BuildSystem(), highlight.NewStyle(false), 2)
	for i := range 50 {
		if _, _, stop := b.Feed(fmt.Sprintf("g++ -c file%d.cpp\n", i)); stop {
			t.Fatalf("stopped at line %d while scanning", i)
		}
	}
	if !b.Index().Empty() {
		t.Errorf("index = %v, want empty", b.Index())
	}
}

func TestBuilder_BuildSystemTrailOnlyGetsDefault(t *testing.T) {
	b := NewBuilder(grammar.BuildSystem(), highlight.NewStyle(false), 0)
	feedAll(b,
		"m.cpp:3:1:   required from here\n",
		"n.cpp:4:1:   required from here\n",
	)
	ix := b.Index()
	if ix[""] != ix["1"] {
		t.Errorf("default = %+v, want tag 1 %+v", ix[""], ix["1"])
	}
}

func TestBuilder_InterpreterFrames(t *testing.T) {
	b := NewBuilder(grammar.Interpreter(), highlight.NewStyle(false), 0)
	out, _ := feedAll(b,
		"Traceback (most recent call last):\n",
		"  File \"app.py\", line 10, in <module>\n",
		"    main()\n",
		"  File \"lib/util.py\", line 3, in main\n",
		"ValueError: boom\n",
	)
	if out[1] != "  File \"app.py\", line 10, in <module> [0]\n" {
		t.Errorf("frame 0 = %q", out[1])
	}
	if out[3] != "  File \"lib/util.py\", line 3, in main [1]\n" {
		t.Errorf("frame 1 = %q", out[3])
	}
	want := Index{
		"":  {File: "app.py", Line: 10},
		"0": {File: "app.py", Line: 10},
		"1": {File: "lib/util.py", Line: 3},
	}
	if diff := cmp.Diff(want, b.Index()); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CRLFLinesAnnotateCleanly(t *testing.T) {
	tests := []struct {
		name  string
		g     grammar.Grammar
		lines []string
		ix    int
		want  string
	}{
		{
			name:  "generic",
			g:     grammar.Generic(),
			lines: []string{"a.c:1:2: error: x\r\n", "b.c:3:4: error: y\r\n"},
			ix:    1,
			want:  "b.c:3:4: error: y [1]\n",
		},
		{
			name:  "interpreter",
			g:     grammar.Interpreter(),
			lines: []string{"Traceback (most recent call last):\r\n", "  File \"x.py\", line 3, in f\r\n"},
			ix:    1,
			want:  "  File \"x.py\", line 3, in f [0]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.g, highlight.NewStyle(false), 0)
			out, _ := feedAll(b, tt.lines...)
			if out[tt.ix] != tt.want {
				t.Errorf("annotated line = %q, want %q", out[tt.ix], tt.want)
			}
		})
	}
}

func TestBuilder_UnmatchedLinesPassThrough(t *testing.T) {
	for _, g := range []grammar.Grammar{grammar.BuildSystem(), grammar.Interpreter(), grammar.Generic()} {
		b := NewBuilder(g, highlight.NewStyle(true), 0)
		for _, line := range []string{"hello\n", "no newline", "\n"} {
			out, ev, _ := b.Feed(line)
			if out != line {
				t.Errorf("%v: Feed(%q) = %q", g.Kind, line, out)
			}
			if ev.Match.Found() || ev.Tag != -1 {
				t.Errorf("%v: unexpected event %+v", g.Kind, ev)
			}
		}
		if !b.Index().Empty() {
			t.Errorf("%v: index not empty", g.Kind)
		}
	}
}

func TestIndex_Keys(t *testing.T) {
	ix := Index{"10": {}, "2": {}, "": {}, "x": {}, "0": {}}
	if diff := cmp.Diff([]string{"", "0", "2", "10", "x"}, ix.Keys()); diff != "" {
		t.Errorf("Keys() (-want +got):\n%s", diff)
	}
}
