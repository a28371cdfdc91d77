// Package grammar classifies lines of tool output into source locations.
//
// Three grammars exist and one is chosen per run from the command name:
//
//   - KindBuildSystem: one primary diagnostic, preceded by "required from"
//     trail lines; after the primary diagnostic nothing else is classified.
//   - KindInterpreter: traceback frames ("  File "x.py", line 3").
//   - KindGeneric: compiler-style "file:line:col:" diagnostics and a few
//     runtime assertion formats.
//
// All patterns are compiled once when the Grammar is built.
package grammar

import (
	"eer/internal/highlight"
	"eer/internal/source"
)

// Kind is the closed set of grammar variants.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindBuildSystem
	KindInterpreter
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindBuildSystem:
		return "build"
	case KindInterpreter:
		return "interpreter"
	default:
		return "unknown"
	}
}

// RunState is the build-system classification mode.
// Other grammars stay in StateScanning for the whole run.
type RunState uint8

const (
	StateScanning RunState = iota
	StateDraining
)

// String returns the string representation of RunState.
func (s RunState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// MatchKind tells which kind of pattern produced a location.
type MatchKind uint8

const (
	MatchNone       MatchKind = iota
	MatchRequired             // build-system "required from" trail line
	MatchPrimary              // build-system primary diagnostic
	MatchFrame                // interpreter traceback frame
	MatchDiagnostic           // generic diagnostic
)

// String returns the string representation of MatchKind.
func (k MatchKind) String() string {
	switch k {
	case MatchNone:
		return "none"
	case MatchRequired:
		return "required"
	case MatchPrimary:
		return "primary"
	case MatchFrame:
		return "frame"
	case MatchDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Match is the result of classifying one line.
type Match struct {
	Kind     MatchKind
	Location source.Location
	Rule     string
}

// Found reports whether the line yielded a location.
func (m Match) Found() bool {
	return m.Kind != MatchNone
}

// Grammar is the immutable per-run classification setup.
type Grammar struct {
	Kind Kind
	// Required matches build-system trail lines; unused by other kinds.
	Required Rules
	// Rules are the location patterns, tried in order.
	Rules Rules
	// Palette recolors headline spans of streamed lines.
	Palette highlight.Palette
}

// Classify extracts a location from line and returns the next state.
// It never prints and never fails: a non-matching line yields MatchNone.
func (g Grammar) Classify(line string, state RunState) (Match, RunState) {
	switch g.Kind {
	case KindBuildSystem:
		if state == StateDraining {
			return Match{}, StateDraining
		}
		if loc, id, ok := g.Required.Match(line); ok {
			return Match{Kind: MatchRequired, Location: loc, Rule: id}, StateScanning
		}
		if loc, id, ok := g.Rules.Match(line); ok {
			return Match{Kind: MatchPrimary, Location: loc, Rule: id}, StateDraining
		}
		return Match{}, StateScanning
	case KindInterpreter:
		if loc, id, ok := g.Rules.Match(line); ok {
			return Match{Kind: MatchFrame, Location: loc, Rule: id}, state
		}
		return Match{}, state
	default:
		if loc, id, ok := g.Rules.Match(line); ok {
			return Match{Kind: MatchDiagnostic, Location: loc, Rule: id}, state
		}
		return Match{}, state
	}
}
