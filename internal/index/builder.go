package index

import (
	"strconv"
	"strings"

	"eer/internal/grammar"
	"eer/internal/highlight"
	"eer/internal/source"
)

// DefaultMaxLines is the number of lines streamed after the primary
// build-system diagnostic before streaming is truncated.
const DefaultMaxLines = 32

// Event describes what Feed did with one line.
type Event struct {
	Match grammar.Match
	// Tag is the numeric tag assigned to the line, or -1.
	Tag int
	// Default is set when the line became the default location.
	Default bool
}

// Builder consumes lines in order and accumulates the Index.
// It is not safe for concurrent use; the streaming loop owns it.
type Builder struct {
	g        grammar.Grammar
	style    highlight.Style
	maxLines int

	state     grammar.RunState
	count     int
	drained   int
	truncated bool
	ix        Index
}

// NewBuilder returns a Builder for one run. maxLines <= 0 selects DefaultMaxLines.
func NewBuilder(g grammar.Grammar, style highlight.Style, maxLines int) *Builder {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Builder{
		g:        g,
		style:    style,
		maxLines: maxLines,
		state:    grammar.StateScanning,
		ix:       make(Index),
	}
}

// Feed classifies one raw line (with or without its trailing newline) and
// returns the text to emit. stop is set once the truncation budget is spent;
// the caller must not feed further lines after that.
func (b *Builder) Feed(line string) (out string, ev Event, stop bool) {
	ev.Tag = -1
	if b.truncated {
		return "", ev, true
	}
	body := strings.TrimRight(line, "\r\n")

	switch b.g.Kind {
	case grammar.KindBuildSystem:
		return b.feedBuild(line, body)
	case grammar.KindInterpreter:
		out, ev = b.feedInterpreter(line, body)
	default:
		out, ev = b.feedGeneric(line, body)
	}
	return out, ev, false
}

func (b *Builder) feedBuild(line, body string) (string, Event, bool) {
	ev := Event{Tag: -1}
	if b.state == grammar.StateDraining {
		out := b.style.Highlight(line, b.g.Palette)
		b.drained++
		if b.drained >= b.maxLines {
			b.truncated = true
			return out, ev, true
		}
		return out, ev, false
	}

	m, next := b.g.Classify(body, b.state)
	b.state = next
	ev.Match = m
	switch m.Kind {
	case grammar.MatchRequired:
		b.count++
		b.put(b.count, m.Location)
		ev.Tag = b.count
		line = b.style.Annotate(line, b.count)
	case grammar.MatchPrimary:
		b.ix[DefaultTag] = m.Location
		ev.Default = true
	}
	return b.style.Highlight(line, b.g.Palette), ev, false
}

func (b *Builder) feedInterpreter(line, body string) (string, Event) {
	ev := Event{Tag: -1}
	m, _ := b.g.Classify(body, b.state)
	ev.Match = m
	if m.Found() {
		tag := b.count
		b.put(tag, m.Location)
		if tag == 0 {
			b.ix[DefaultTag] = m.Location
			ev.Default = true
		}
		ev.Tag = tag
		line = b.style.Annotate(line, tag)
		b.count++
	}
	return b.style.Highlight(line, b.g.Palette), ev
}

func (b *Builder) feedGeneric(line, body string) (string, Event) {
	ev := Event{Tag: -1}
	m, _ := b.g.Classify(body, b.state)
	ev.Match = m
	if m.Found() {
		tag := b.count
		b.put(tag, m.Location)
		if tag == 0 {
			// the main error stays unannotated
			b.ix[DefaultTag] = m.Location
			ev.Default = true
		} else {
			line = b.style.Annotate(line, tag)
		}
		ev.Tag = tag
		b.count++
	}
	return b.style.Highlight(line, b.g.Palette), ev
}

func (b *Builder) put(tag int, loc source.Location) {
	b.ix[strconv.Itoa(tag)] = loc
}

// State returns the current classification state.
func (b *Builder) State() grammar.RunState {
	return b.state
}

// Truncated reports whether the line budget was exceeded.
func (b *Builder) Truncated() bool {
	return b.truncated
}

// Index returns the accumulated table. A build-system run that only saw
// "required from" lines gets its first trail entry as the default.
func (b *Builder) Index() Index {
	if len(b.ix) > 0 {
		if _, ok := b.ix[DefaultTag]; !ok {
			if loc, ok := b.ix["1"]; ok {
				b.ix[DefaultTag] = loc
			} else if loc, ok := b.ix["0"]; ok {
				b.ix[DefaultTag] = loc
			}
		}
	}
	return b.ix
}
