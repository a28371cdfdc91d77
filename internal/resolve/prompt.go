package resolve

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"eer/internal/highlight"
	"eer/internal/index"
	"eer/internal/ui"
)

// PromptText is written before reading the tag.
const PromptText = "Press RETURN to continue..."

// LinePrompter reads the tag as one line of text.
type LinePrompter struct {
	in    *bufio.Reader
	out   io.Writer
	style highlight.Style
}

// NewLinePrompter reads from in and writes the prompt to out.
func NewLinePrompter(in io.Reader, out io.Writer, style highlight.Style) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out, style: style}
}

// Ask writes the truncation marker when needed and the literal prompt, then
// reads one line. Only the line ending is stripped, so " 2" is not tag 2.
// End of input leaves the tag unresolved.
func (p *LinePrompter) Ask(truncated bool) (string, bool, error) {
	if truncated {
		_, _ = io.WriteString(p.out, p.style.Truncated()+"\n")
	}
	_, _ = io.WriteString(p.out, PromptText)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("read tag: %w", err)
		}
		if line == "" {
			_, _ = io.WriteString(p.out, "\n")
			return "", false, nil
		}
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// PickerPrompter shows the interactive tag list.
type PickerPrompter struct {
	in    io.Reader
	out   io.Writer
	style highlight.Style
	ix    index.Index
}

// NewPickerPrompter lists the tags of ix; the screen is drawn on out.
func NewPickerPrompter(in io.Reader, out io.Writer, style highlight.Style, ix index.Index) *PickerPrompter {
	return &PickerPrompter{in: in, out: out, style: style, ix: ix}
}

// Ask writes the truncation marker above the picker, where it outlives the
// picker screen, then runs the picker.
func (p *PickerPrompter) Ask(truncated bool) (string, bool, error) {
	if truncated {
		_, _ = io.WriteString(p.out, p.style.Truncated()+"\n")
	}
	return ui.Pick(p.ix, ui.Options{Input: p.in, Output: p.out})
}
