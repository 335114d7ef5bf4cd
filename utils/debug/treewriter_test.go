package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "document", nil, "document\n"},
		{"indented", 2, "paragraph style=%s", []any{"Heading1"}, "    paragraph style=Heading1\n"},
		{"multiple args", 1, "%s = %d", []any{"rows", 3}, "  rows = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		value string
		want  string
	}{
		{"empty", 0, "", "text: \n"},
		{"plain", 1, "标题", "  text: \"标题\"\n"},
		{"line break", 0, "a\nb", "text: \"a\\nb\"\n"},
		{"quotes", 0, `say "hi"`, "text: \"say \\\"hi\\\"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, "text", tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Fields(t *testing.T) {
	tw := NewTreeWriter()
	tw.Fields(1, "media", map[string]string{
		"image10": "b.png",
		"image2":  "a.png",
		"empty":   "",
		"align":   "center",
	})
	want := "  media align=center image2=a.png image10=b.png\n"
	if got := tw.String(); got != want {
		t.Errorf("Fields() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Tree(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "document")
	tw.Line(1, "paragraph")
	tw.TextBlock(2, "run", "value")
	tw.Fields(1, "section", map[string]string{"w": "11900"})

	want := "document\n  paragraph\n    run: \"value\"\n  section w=11900\n"
	if got := tw.String(); got != want {
		t.Errorf("tree:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
