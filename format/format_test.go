package format

import (
	"testing"

	"wtpl/model"
	"wtpl/units"
)

func global() *model.DocumentFormat {
	f := model.DefaultFormat()
	f.Font.Family = "宋体"
	f.Paragraph.Indent.FirstLine = 2
	f.Paragraph.Indent.FirstLineUnit = units.Char
	f.Paragraph.Border = &model.BorderSettings{Bottom: &model.BottomBorder{Style: model.BorderSingle, Color: "#333333", Size: 1, Space: 1}}
	return &f
}

func TestResolveUsesGlobal(t *testing.T) {
	g := global()
	for _, use := range []*bool{nil, model.Ptr(true)} {
		b := &model.Block{Format: model.BlockFormat{
			UseGlobalFormat: use,
			Font:            &model.FontOverride{Bold: model.Ptr(true), Size: model.Ptr(30.0), Family: model.Ptr("黑体")},
			Paragraph:       &model.ParagraphOverride{LineHeight: model.Ptr(3.0)},
		}}
		r := Resolve(b, g)
		if r.Font != g.Font {
			t.Errorf("Font = %+v, want global %+v", r.Font, g.Font)
		}
		if r.Paragraph.LineHeight != g.Paragraph.LineHeight {
			t.Error("paragraph override applied while using global format")
		}
	}
}

func TestResolveFieldOverride(t *testing.T) {
	g := global()
	b := &model.Block{Format: model.BlockFormat{
		UseGlobalFormat: model.Ptr(false),
		Font:            &model.FontOverride{Bold: model.Ptr(true)},
	}}
	r := Resolve(b, g)
	want := g.Font
	want.Bold = true
	if r.Font != want {
		t.Errorf("Font = %+v, want %+v", r.Font, want)
	}
	if r.Paragraph.Indent != g.Paragraph.Indent {
		t.Errorf("Indent = %+v, want global", r.Paragraph.Indent)
	}
}

func TestResolveIndentDeepMerge(t *testing.T) {
	g := global()
	b := &model.Block{Format: model.BlockFormat{
		UseGlobalFormat: model.Ptr(false),
		Paragraph: &model.ParagraphOverride{
			Alignment: model.Ptr(model.AlignCenter),
			Indent:    &model.IndentOverride{Left: model.Ptr(1.5), LeftUnit: model.Ptr(units.Cm)},
		},
	}}
	r := Resolve(b, g)
	in := r.Paragraph.Indent
	if in.Left != 1.5 || in.LeftUnit != units.Cm {
		t.Errorf("left indent not applied: %+v", in)
	}
	if in.FirstLine != 2 || in.FirstLineUnit != units.Char {
		t.Errorf("first line indent not inherited: %+v", in)
	}
	if r.Paragraph.Alignment != model.AlignCenter || r.Paragraph.LineHeight != g.Paragraph.LineHeight {
		t.Errorf("unexpected paragraph %+v", r.Paragraph)
	}
	if g.Paragraph.Indent.Left != 0 {
		t.Error("Resolve() mutated global format")
	}
}

func TestResolveBorder(t *testing.T) {
	g := global()
	inherit := &model.Block{Format: model.BlockFormat{UseGlobalFormat: model.Ptr(false)}}
	if bb := Resolve(inherit, g).BottomBorder(); bb == nil || bb.Color != "#333333" {
		t.Errorf("BottomBorder() = %+v, want inherited", bb)
	}

	cleared := &model.Block{Format: model.BlockFormat{
		UseGlobalFormat: model.Ptr(false),
		Paragraph:       &model.ParagraphOverride{Border: &model.BorderSettings{}},
	}}
	if bb := Resolve(cleared, g).BottomBorder(); bb != nil {
		t.Errorf("BottomBorder() = %+v, want nil", bb)
	}

	g.Paragraph.Border.Bottom.Style = model.BorderNone
	if bb := Resolve(nil, g).BottomBorder(); bb != nil {
		t.Error("style none must not produce border")
	}
}

func TestHeading(t *testing.T) {
	g := global()
	b := &model.Block{Format: model.BlockFormat{
		EnableHeadingFormat: true,
		HeadingFormat: &model.HeadingFormat{
			Font:      &model.FontOverride{Size: model.Ptr(18.0), Bold: model.Ptr(true)},
			Paragraph: &model.ParagraphOverride{Indent: &model.IndentOverride{FirstLine: model.Ptr(0.0)}},
		},
	}}
	base := Resolve(b, g)
	h, ok := Heading(b, base)
	if !ok {
		t.Fatal("Heading() not enabled")
	}
	if h.Font.Size != 18 || !h.Font.Bold || h.Font.Family != "宋体" {
		t.Errorf("heading font = %+v", h.Font)
	}
	if h.Paragraph.Indent.FirstLine != 0 || h.Paragraph.Indent.FirstLineUnit != units.Char {
		t.Errorf("heading indent = %+v", h.Paragraph.Indent)
	}

	b.Format.EnableHeadingFormat = false
	if _, ok := Heading(b, base); ok {
		t.Error("Heading() enabled without flag")
	}
}

func TestColumnRatio(t *testing.T) {
	tests := []struct {
		ratio *float64
		want  float64
	}{
		{nil, 0.5},
		{model.Ptr(0.3), 0.3},
		{model.Ptr(0.0), 0.5},
		{model.Ptr(1.2), 0.5},
	}
	for _, tt := range tests {
		b := &model.Block{Format: model.BlockFormat{ColumnRatio: tt.ratio}}
		if got := ColumnRatio(b); got != tt.want {
			t.Errorf("ColumnRatio(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestFontMap(t *testing.T) {
	if got := DefaultFontMap.WordName("宋体"); got != "SimSun" {
		t.Errorf("WordName(宋体) = %q", got)
	}
	if got := DefaultFontMap.WordName("仿宋_GB2312"); got != "仿宋_GB2312" {
		t.Errorf("WordName(仿宋_GB2312) = %q", got)
	}
	if got := DefaultFontMap.WordName("Arial"); got != "Arial" {
		t.Errorf("WordName(Arial) = %q", got)
	}
	var empty FontMap
	if got := empty.WordName("黑体"); got != "SimHei" {
		t.Errorf("nil map WordName(黑体) = %q", got)
	}
	m := DefaultFontMap.Merge(map[string]string{"宋体": "Songti SC", "隶书": "LiSu"})
	if m.WordName("宋体") != "Songti SC" || m.WordName("隶书") != "LiSu" || m.WordName("楷体") != "KaiTi" {
		t.Errorf("Merge() = %v", m)
	}
	if DefaultFontMap["宋体"] != "SimSun" {
		t.Error("Merge() modified receiver")
	}
}

func TestPreviewFontFamily(t *testing.T) {
	tests := map[string]string{
		"仿宋_GB2312":       `"仿宋_GB2312", "仿宋", "FangSong", "STFangsong", serif`,
		"Microsoft YaHei": `"Microsoft YaHei", sans-serif`,
		"":                "sans-serif",
	}
	for in, want := range tests {
		if got := PreviewFontFamily(in); got != want {
			t.Errorf("PreviewFontFamily(%q) = %q, want %q", in, got, want)
		}
	}
}
