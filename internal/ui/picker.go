// Package ui renders the optional tag picker shown after a run.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"eer/internal/index"
)

type entry struct {
	tag      string
	location string
}

type pickerModel struct {
	entries []entry
	cursor  int
	input   textinput.Model
	width   int

	tag      string
	resolved bool
	done     bool
}

// Options configures Pick.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// NewPickerModel returns a Bubble Tea model listing the tags of ix.
// Enter resolves the typed tag (empty means the default tag); Esc and
// Ctrl-C leave it unresolved.
func NewPickerModel(ix index.Index) tea.Model {
	ti := textinput.New()
	ti.Prompt = "tag> "
	ti.Placeholder = "RETURN for default"
	ti.CharLimit = 16
	ti.Focus()

	keys := ix.Keys()
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{tag: k, location: ix[k].String()})
	}
	return &pickerModel{
		entries: entries,
		input:   ti,
		width:   80,
	}
}

func (m *pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.tag = strings.TrimSpace(m.input.Value())
			m.resolved = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
			m.done = true
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
			return m, nil
		case tea.KeyDown:
			m.move(1)
			return m, nil
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// move walks the list and mirrors the highlighted tag into the input.
func (m *pickerModel) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.entries)) % len(m.entries)
	m.input.SetValue(m.entries[m.cursor].tag)
	m.input.CursorEnd()
}

func (m *pickerModel) View() string {
	if m.done {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	tagStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Jump to location"))
	b.WriteString("\n\n")

	tagWidth := 9
	locWidth := m.width - tagWidth - 4
	if locWidth < 20 {
		locWidth = 20
	}
	for i, e := range m.entries {
		label := "[" + e.tag + "]"
		if e.tag == index.DefaultTag {
			label = "default"
		}
		marker := "  "
		loc := truncate(e.location, locWidth)
		if i == m.cursor {
			marker = "> "
			loc = selStyle.Render(loc)
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, tagStyle.Render(fmt.Sprintf("%-*s", tagWidth, label)), loc)
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// Result reports the picked tag. ok is false when the picker was dismissed.
func (m *pickerModel) Result() (tag string, ok bool) {
	return m.tag, m.resolved
}

// Pick runs the picker until the user chooses or dismisses.
func Pick(ix index.Index, opts Options) (string, bool, error) {
	var progOpts []tea.ProgramOption
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	final, err := tea.NewProgram(NewPickerModel(ix), progOpts...).Run()
	if err != nil {
		return "", false, fmt.Errorf("tag picker: %w", err)
	}
	pm, ok := final.(*pickerModel)
	if !ok {
		return "", false, nil
	}
	tag, resolved := pm.Result()
	return tag, resolved, nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
