package htmlfrag

import (
	"testing"
)

func texts(segs []Segment) []string {
	var res []string
	for _, s := range segs {
		res = append(res, s.Text())
	}
	return res
}

func TestParseParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		kinds []Kind
		texts []string
	}{
		{"single paragraph", "<p>Hello</p>", []Kind{KindParagraph}, []string{"Hello"}},
		{"no block tags", "Hello <b>bold</b> world", []Kind{KindParagraph}, []string{"Hellobold" + "world"}},
		{"headings", "<h1>Title</h1><p>Body</p><h3>Sub</h3>", []Kind{KindHeading, KindParagraph, KindHeading}, []string{"Title", "Body", "Sub"}},
		{"div recursion without duplicates", "<div><p>a</p><p>b</p></div>", []Kind{KindParagraph, KindParagraph}, []string{"a", "b"}},
		{"div with inline content", "<div>plain</div>", []Kind{KindParagraph}, []string{"plain"}},
		{"blockquote", "<blockquote>quoted</blockquote>", []Kind{KindQuote}, []string{"quoted"}},
		{"blockquote with paragraphs", "<blockquote><p>x</p><p>y</p></blockquote>", []Kind{KindQuote, KindQuote}, []string{"x", "y"}},
		{"other element is a paragraph", "<p>a</p><span>b</span>", []Kind{KindParagraph, KindParagraph}, []string{"a", "b"}},
		{"empty paragraphs fall back to text", "<p>   </p>", []Kind{KindParagraph}, []string{"   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(segs) != len(tt.kinds) {
				t.Fatalf("Parse() returned %d segments %v, want %d", len(segs), texts(segs), len(tt.kinds))
			}
			for i, s := range segs {
				if s.Kind != tt.kinds[i] {
					t.Errorf("segment %d kind = %v, want %v", i, s.Kind, tt.kinds[i])
				}
				if s.Text() != tt.texts[i] {
					t.Errorf("segment %d text = %q, want %q", i, s.Text(), tt.texts[i])
				}
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	segs, err := Parse("")
	if err != nil || segs != nil {
		t.Errorf("Parse(\"\") = %v, %v", segs, err)
	}
}

func TestParseHeadingLevel(t *testing.T) {
	segs, _ := Parse("<h2>x</h2><h6>y</h6>")
	if segs[0].Level != 2 || segs[1].Level != 6 {
		t.Errorf("levels = %d, %d", segs[0].Level, segs[1].Level)
	}
}

func TestParseLists(t *testing.T) {
	segs, err := Parse("<ol><li>one</li><li>two<ul><li>inner</li></ul></li></ol>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []struct {
		text  string
		level int
	}{
		{"1. one", 0},
		{"2. two", 0},
		{"• inner", 1},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %v", texts(segs))
	}
	for i, w := range want {
		s := segs[i]
		if s.Kind != KindListItem || s.Text() != w.text || s.Level != w.level {
			t.Errorf("segment %d = %v %q level %d, want %q level %d", i, s.Kind, s.Text(), s.Level, w.text, w.level)
		}
		if !s.Runs[0].Marker || s.Runs[0].Style != (Style{}) {
			t.Errorf("segment %d marker run = %+v", i, s.Runs[0])
		}
	}
}

func TestListMarkerHasNoInheritedStyle(t *testing.T) {
	segs, _ := Parse(`<ul><li style="color: red"><b>x</b></li></ul>`)
	runs := segs[0].Runs
	if runs[0].Style != (Style{}) {
		t.Errorf("marker style = %+v", runs[0].Style)
	}
	if !runs[1].Style.Bold || runs[1].Style.Color != "#FF0000" {
		t.Errorf("item style = %+v", runs[1].Style)
	}
}

func TestParseRunsStyles(t *testing.T) {
	segs, err := Parse(`<p>plain <strong>bold <em>both</em></strong> <u>under</u>` +
		`<span style="font-weight: 700; font-style: italic">css</span>` +
		`<span style="text-decoration: underline; font-family: '楷体', serif; font-size: 16px; color: rgb(0, 0, 255)">deco</span>` +
		`<span style="font-size: 14pt">pt</span></p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	runs := segs[0].Runs
	want := []struct {
		text  string
		style Style
	}{
		{"plain", Style{}},
		{"bold", Style{Bold: true}},
		{"both", Style{Bold: true, Italic: true}},
		{"under", Style{Underline: true}},
		{"css", Style{Bold: true, Italic: true}},
		{"deco", Style{Underline: true, Font: "楷体", Size: 12, Color: "#0000ff"}},
		{"pt", Style{Size: 14}},
	}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs: %+v", len(runs), runs)
	}
	for i, w := range want {
		if runs[i].Text != w.text || runs[i].Style != w.style {
			t.Errorf("run %d = %q %+v, want %q %+v", i, runs[i].Text, runs[i].Style, w.text, w.style)
		}
	}
}

func TestBoldIsInherited(t *testing.T) {
	segs, _ := Parse(`<p><b>outer <span>inner</span></b></p>`)
	for _, r := range segs[0].Runs {
		if !r.Style.Bold {
			t.Errorf("run %q lost bold", r.Text)
		}
	}
}

func TestBreakUsesInheritedStyle(t *testing.T) {
	segs, _ := Parse(`<p><i>a<br>b</i></p>`)
	runs := segs[0].Runs
	if len(runs) != 3 || runs[1].Text != "\n" || !runs[1].Style.Italic {
		t.Errorf("runs = %+v", runs)
	}
}

func TestFontTag(t *testing.T) {
	segs, _ := Parse(`<font face="黑体" color="green">x</font>`)
	st := segs[0].Runs[0].Style
	if st.Font != "黑体" || st.Color != "#008000" {
		t.Errorf("style = %+v", st)
	}
}

func TestKindString(t *testing.T) {
	if KindQuote.String() != "quote" || Kind(42).String() != "paragraph" {
		t.Error("unexpected Kind.String()")
	}
}
