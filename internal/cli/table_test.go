package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jmylchreest/skytint/internal/colour"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable("Name", "Colour")

	table.AddRow("Oktoberfest", "#F2C94C")
	table.AddRow("Tollwood")
	table.AddRow("Auer Dult", "#6FCF97", "extra")

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	for i, row := range table.rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d cells, want 2", i, len(row))
		}
	}
	if table.rows[1][1] != "" {
		t.Errorf("padded cell = %q, want empty", table.rows[1][1])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable("Festival", "Days", "On")
	table.AddRow("Oktoberfest", "20-30", "#000000")
	table.AddRow("Tollwood", "1-5", "#FFFFFF")

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")

	want := []string{
		"Festival     Days   On",
		"-----------  -----  -------",
		"Oktoberfest  20-30  #000000",
		"Tollwood     1-5    #FFFFFF",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("Render() with no headers = %q, want empty", got)
	}

	got := NewTable("Column1", "Column2").Render()
	if got != "Column1  Column2\n-------  -------\n" {
		t.Errorf("Render() with no rows = %q", got)
	}
}

func TestTableIgnoresEscapesInWidth(t *testing.T) {
	preview := colour.ColourPreview(colour.RGB{R: 255}, 4)

	table := NewTable("Swatch", "Hex")
	table.AddRow(preview, "#ff0000")

	lines := strings.Split(table.Render(), "\n")
	if !strings.HasPrefix(lines[2], preview+"  ") {
		t.Errorf("preview cell padded incorrectly: %q", lines[2])
	}
	if lines[1] != "------  -------" {
		t.Errorf("separator = %q", lines[1])
	}
}

func TestTableWrap(t *testing.T) {
	table := NewTable("Name", "Prompt")
	table.SetColumnMaxWidth(1, 10)
	table.AddRow("a", "one two three four")

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
	want := []string{
		"Name  Prompt",
		"----  ----------",
		"a     one two",
		"      three four",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("Render() =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestTableWrite(t *testing.T) {
	table := NewTable("A")
	table.AddRow("x")

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != table.Render() {
		t.Errorf("Write() = %q, want %q", buf.String(), table.Render())
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{"test", 10, "test      "},
		{"hello", 5, "hello"},
		{"world", 3, "world"},
		{"", 5, "     "},
		{"\x1b[0mx", 3, "\x1b[0mx  "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"no limit", "a long line of text", 0, []string{"a long line of text"}},
		{"words", "aa bb cc dd", 5, []string{"aa bb", "cc dd"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"escapes", "\x1b[48;2;1;2;3m          \x1b[0m", 4, []string{"\x1b[48;2;1;2;3m          \x1b[0m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}
