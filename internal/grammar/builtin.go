package grammar

import (
	"path/filepath"
	"slices"
	"strings"

	"eer/internal/highlight"
)

// BuildSystem returns the grammar for build drivers such as make.
func BuildSystem() Grammar {
	return Grammar{
		Kind: KindBuildSystem,
		Required: Rules{
			MustRule("required-from", `([^ :]+):([0-9]+):([0-9]+): *required from`, 1, 2, 3),
		},
		Rules: Rules{
			MustRule("file:line:col", `([^ :]+):([0-9]+):([0-9]+):`, 1, 2, 3),
		},
		Palette: highlight.MustPalette(
			`((?:[A-Z]:)?[^:]+:[0-9]+:[0-9]+: (?:fatal )?error: )([^\[]*)(.*)`,
		),
	}
}

// Interpreter returns the grammar for interpreter tracebacks.
func Interpreter() Grammar {
	return Grammar{
		Kind: KindInterpreter,
		Rules: Rules{
			MustRule("traceback-frame", `  File "([^"]+)", line ([0-9]+)`, 1, 2, 0),
		},
		Palette: highlight.MustPalette(
			`()(Traceback \(most recent call last\):)(.*)`,
			`()([A-Za-z_][A-Za-z0-9_.]*(?:Error|Exception|Interrupt|Exit))(:.*|$)`,
		),
	}
}

// Generic returns the fallback grammar.
func Generic() Grammar {
	return Grammar{
		Kind: KindGeneric,
		Rules: Rules{
			MustRule("assertion", `Error: Assertion failed\. File: ([^ ]+), Line ([0-9]+)`, 1, 2, 0),
			MustRule("file:line:col", ` *((?:[A-Z]:)?[^ :]+):([0-9]+):([0-9]+):`, 1, 2, 3),
			MustRule("file:line", ` *((?:[A-Z]:)?[^ :]+):([0-9]+): `, 1, 2, 0),
		},
		Palette: highlight.MustPalette(
			`((?:[A-Z]:)?[^:]+:[0-9]+:(?:[0-9]+:)? (?:fatal )?)(error: )(.*)`,
			`()(Error: Assertion failed\.)(.*)`,
		),
	}
}

// Selector decides which grammar applies to a command.
type Selector struct {
	// BuildCommands are matched exactly against the command or its base name.
	BuildCommands []string
	// InterpreterMarkers are searched for inside the command.
	InterpreterMarkers []string
}

// DefaultSelector returns the built-in selection table.
func DefaultSelector() Selector {
	return Selector{
		BuildCommands:      []string{"make"},
		InterpreterMarkers: []string{"python"},
	}
}

// Kind chooses the grammar kind for argv.
func (s Selector) Kind(argv []string) Kind {
	if len(argv) == 0 {
		return KindGeneric
	}
	name := argv[0]
	if slices.Contains(s.BuildCommands, name) || slices.Contains(s.BuildCommands, filepath.Base(name)) {
		return KindBuildSystem
	}
	for _, marker := range s.InterpreterMarkers {
		if marker != "" && strings.Contains(name, marker) {
			return KindInterpreter
		}
	}
	return KindGeneric
}

// Select builds the grammar for argv. It is called once per run.
func (s Selector) Select(argv []string) Grammar {
	return ForKind(s.Kind(argv))
}

// ForKind builds the grammar for k.
func ForKind(k Kind) Grammar {
	switch k {
	case KindBuildSystem:
		return BuildSystem()
	case KindInterpreter:
		return Interpreter()
	default:
		return Generic()
	}
}
