package grammar

import (
	"regexp"

	"eer/internal/source"
)

// Rule extracts a location from the start of a line.
// Group indices are 1-based; 0 means the tool does not report that part.
type Rule struct {
	ID          string
	Regex       *regexp.Regexp
	FileGroup   int
	LineGroup   int
	ColumnGroup int
}

// MustRule compiles pattern anchored at line start.
// Use for known-good patterns at initialization.
func MustRule(id, pattern string, fileGroup, lineGroup, columnGroup int) Rule {
	return Rule{
		ID:          id,
		Regex:       regexp.MustCompile(`^(?:` + pattern + `)`),
		FileGroup:   fileGroup,
		LineGroup:   lineGroup,
		ColumnGroup: columnGroup,
	}
}

// Match extracts the location if the line starts with the rule's pattern.
func (r Rule) Match(line string) (source.Location, bool) {
	if r.Regex == nil {
		return source.Location{}, false
	}
	m := r.Regex.FindStringSubmatch(line)
	if m == nil {
		return source.Location{}, false
	}
	group := func(g int) string {
		if g <= 0 || g >= len(m) {
			return ""
		}
		return m[g]
	}
	loc, err := source.ParseLocation(group(r.FileGroup), group(r.LineGroup), group(r.ColumnGroup))
	if err != nil {
		return source.Location{}, false
	}
	return loc, true
}

// Rules is an ordered rule list; the first match wins.
type Rules []Rule

// Match tries each rule in order.
func (rs Rules) Match(line string) (source.Location, string, bool) {
	for _, r := range rs {
		if loc, ok := r.Match(line); ok {
			return loc, r.ID, true
		}
	}
	return source.Location{}, "", false
}
