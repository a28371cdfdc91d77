package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Location identifies a point in source text reported by a tool.
// Line is 1-based; Column is 1-based or 0 when the tool did not report one.
type Location struct {
	File   string
	Line   uint32
	Column uint32
}

// ErrBadLocation reports extracted groups that do not form a location.
var ErrBadLocation = errors.New("bad location")

// ParseLocation builds a Location from the raw text captured by a rule.
// An empty column is accepted and yields Column == 0.
func ParseLocation(file, line, column string) (Location, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return Location{}, fmt.Errorf("%w: empty file", ErrBadLocation)
	}
	ln, err := parseNumber(line)
	if err != nil {
		return Location{}, fmt.Errorf("%w: line %q: %w", ErrBadLocation, line, err)
	}
	if ln == 0 {
		return Location{}, fmt.Errorf("%w: line must be >= 1", ErrBadLocation)
	}
	var col uint32
	if strings.TrimSpace(column) != "" {
		col, err = parseNumber(column)
		if err != nil {
			return Location{}, fmt.Errorf("%w: column %q: %w", ErrBadLocation, column, err)
		}
	}
	return Location{
		// macOS tools may print decomposed paths
		File:   norm.NFC.String(file),
		Line:   ln,
		Column: col,
	}, nil
}

func parseNumber(s string) (uint32, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return safecast.Conv[uint32](n)
}

// HasColumn reports whether the tool reported a column.
func (l Location) HasColumn() bool {
	return l.Column > 0
}

// String renders the location as file:line[:column].
func (l Location) String() string {
	if l.HasColumn() {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
