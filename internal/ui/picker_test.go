package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"eer/internal/index"
	"eer/internal/source"
)

func sampleIndex() index.Index {
	main := source.Location{File: "foo.c", Line: 10, Column: 5}
	return index.Index{
		"":  main,
		"1": {File: "bar.h", Line: 3, Column: 1},
		"2": main,
	}
}

func keys(m tea.Model, msgs ...tea.Msg) *pickerModel {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(*pickerModel)
}

func runes(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_EnterResolvesTypedTag(t *testing.T) {
	m := keys(NewPickerModel(sampleIndex()), runes("2"), tea.KeyMsg{Type: tea.KeyEnter})
	tag, ok := m.Result()
	if !ok || tag != "2" {
		t.Errorf("Result() = %q, %v", tag, ok)
	}
}

func TestPicker_EmptyEnterMeansDefault(t *testing.T) {
	m := keys(NewPickerModel(sampleIndex()), tea.KeyMsg{Type: tea.KeyEnter})
	tag, ok := m.Result()
	if !ok || tag != index.DefaultTag {
		t.Errorf("Result() = %q, %v", tag, ok)
	}
}

func TestPicker_EscapeLeavesUnresolved(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := keys(NewPickerModel(sampleIndex()), runes("1"), tea.KeyMsg{Type: key})
		if _, ok := m.Result(); ok {
			t.Errorf("%v resolved a tag", key)
		}
		if m.View() != "" {
			t.Errorf("view after quit = %q", m.View())
		}
	}
}

func TestPicker_ArrowsFillInput(t *testing.T) {
	m := keys(NewPickerModel(sampleIndex()),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	tag, ok := m.Result()
	if !ok || tag != "2" {
		t.Errorf("Result() = %q, %v", tag, ok)
	}

	wrap := keys(NewPickerModel(sampleIndex()), tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if tag, _ := wrap.Result(); tag != "2" {
		t.Errorf("up from the top should wrap to the last tag, got %q", tag)
	}
}

func TestPicker_View(t *testing.T) {
	m := NewPickerModel(sampleIndex()).(*pickerModel)
	view := m.View()
	for _, want := range []string{"default", "[1]", "bar.h:3:1", "foo.c:10:5", "tag> "} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "[truncated]") {
		t.Errorf("truncation marker belongs above the picker:\n%s", view)
	}
	if strings.Index(view, "default") > strings.Index(view, "[1]") {
		t.Error("default tag should be listed first")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{in: "short.c:1", width: 20, want: "short.c:1"},
		{in: "a/very/long/path/file.c:10:2", width: 10, want: "a/very/..."},
		{in: "abcdef", width: 2, want: "ab"},
		{in: "abc", width: 0, want: "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
