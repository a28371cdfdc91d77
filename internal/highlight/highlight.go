// Package highlight recolors the headline span of diagnostic lines.
//
// A Palette is an ordered list of start-anchored patterns with exactly three
// capture groups: prefix, headline and suffix. The first pattern that matches
// wins; the headline is wrapped in bold red and the line is terminated with a
// newline. Lines matching nothing pass through untouched.
package highlight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Palette is an ordered list of headline patterns.
type Palette []*regexp.Regexp

// MustPalette compiles the given patterns, anchoring each at line start.
// It panics if a pattern does not compile or does not have three groups.
func MustPalette(patterns ...string) Palette {
	p := make(Palette, 0, len(patterns))
	for _, pat := range patterns {
		re := regexp.MustCompile(`^(?:` + pat + `)`)
		if re.NumSubexp() != 3 {
			panic(fmt.Sprintf("highlight: pattern %q must have 3 groups, has %d", pat, re.NumSubexp()))
		}
		p = append(p, re)
	}
	return p
}

// Style holds the colors used on the terminal.
type Style struct {
	headline *color.Color
	dim      *color.Color
}

// NewStyle returns a Style; when enabled is false every method emits plain text.
func NewStyle(enabled bool) Style {
	s := Style{
		headline: color.New(color.FgRed, color.Bold),
		dim:      color.New(color.FgBlack, color.Bold),
	}
	if enabled {
		s.headline.EnableColor()
		s.dim.EnableColor()
	} else {
		s.headline.DisableColor()
		s.dim.DisableColor()
	}
	return s
}

// Highlight recolors the headline of line using the first matching pattern.
// line may carry its trailing newline; a matched line always ends with one.
func (s Style) Highlight(line string, p Palette) string {
	body := strings.TrimSuffix(line, "\n")
	for _, re := range p {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		return m[1] + s.headline.Sprint(m[2]) + m[3] + "\n"
	}
	return line
}

// Annotate appends the dim tag marker to line, ending it with a bare newline.
func (s Style) Annotate(line string, tag int) string {
	return strings.TrimRight(line, "\r\n") + " " + s.dim.Sprint("["+strconv.Itoa(tag)+"]") + "\n"
}

// Truncated is the marker line shown when streaming stopped early.
func (s Style) Truncated() string {
	return s.dim.Sprint("[truncated]") + "\n"
}
