package preview

import (
	"testing"
	"time"

	"wtpl/css"
	"wtpl/model"
	"wtpl/units"
)

func testTemplate(blocks ...*model.Block) *model.Template {
	t := model.NewTemplate(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	t.Name = "预览"
	for i, b := range blocks {
		b.Position = i
		t.Content = append(t.Content, b)
	}
	return t
}

func textBlock(html string) *model.Block {
	b := model.NewBlock(model.BlockText, 0)
	b.Content = model.TextContent(html)
	return b
}

func get(t *testing.T, d css.Declarations, property string) string {
	t.Helper()
	v, ok := d.Get(property)
	if !ok {
		return ""
	}
	return v.Raw
}

func TestBuildStyle_Global(t *testing.T) {
	b := textBlock("<p>x</p>")
	tpl := testTemplate(b)
	tpl.Format.Font.Bold = true

	st := BuildStyle(b, tpl)

	tests := []struct {
		decl     css.Declarations
		property string
		want     string
	}{
		{st.Block, "text-align", "left"},
		{st.Block, "line-height", "1.5"},
		{st.Block, "margin-bottom", "6pt"},
		{st.Font, "font-family", `"Microsoft YaHei", sans-serif`},
		{st.Font, "font-size", "12pt"},
		{st.Font, "color", "#000000"},
		{st.Font, "font-weight", "bold"},
		{st.Font, "font-style", "normal"},
		{st.Font, "text-decoration", "none"},
	}
	for _, tt := range tests {
		if got := get(t, tt.decl, tt.property); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.property, got, tt.want)
		}
	}
	if _, ok := st.Block.Get("margin-top"); ok {
		t.Error("margin-top set without space before")
	}
}

func TestBuildStyle_Override(t *testing.T) {
	b := textBlock("<p>x</p>")
	b.Format.UseGlobalFormat = model.Ptr(false)
	b.Format.Font = &model.FontOverride{Size: model.Ptr(16.0), Italic: model.Ptr(true)}
	b.Format.Paragraph = &model.ParagraphOverride{
		SpaceBefore: model.Ptr(10.0),
		Alignment:   model.Ptr(model.AlignCenter),
		Indent: &model.IndentOverride{
			FirstLine:     model.Ptr(2.0),
			FirstLineUnit: model.Ptr(units.Char),
		},
	}
	st := BuildStyle(b, testTemplate(b))

	if got := get(t, st.Font, "font-size"); got != "16pt" {
		t.Errorf("font-size = %q", got)
	}
	if got := get(t, st.Font, "font-style"); got != "italic" {
		t.Errorf("font-style = %q", got)
	}
	if got := get(t, st.Block, "text-align"); got != "center" {
		t.Errorf("text-align = %q", got)
	}
	if got := get(t, st.Block, "margin-top"); got != "10pt" {
		t.Errorf("margin-top = %q", got)
	}
	// two characters of 16pt font
	if got := get(t, st.Block, "text-indent"); got != "32pt" {
		t.Errorf("text-indent = %q", got)
	}
}

func TestBuildStyle_Borders(t *testing.T) {
	tests := []struct {
		name   string
		border model.BottomBorder
		bottom string
		shadow string
	}{
		{"single", model.BottomBorder{Style: model.BorderSingle, Color: "#ff0000", Size: 1, Space: 2}, "1px solid #ff0000", ""},
		{"double", model.BottomBorder{Style: model.BorderDouble, Color: "#000000", Size: 3, Space: 1}, "3px double #000000", ""},
		{"thick thin", model.BottomBorder{Style: model.BorderThickThin, Color: "#333333", Size: 2, Space: 1}, "2px solid #333333", "0 3px 0 0 #333333"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := textBlock("x")
			tpl := testTemplate(b)
			border := tt.border
			tpl.Format.Paragraph.Border = &model.BorderSettings{Bottom: &border}

			st := BuildStyle(b, tpl)
			if got := get(t, st.Block, "border-bottom"); got != tt.bottom {
				t.Errorf("border-bottom = %q, want %q", got, tt.bottom)
			}
			if got := get(t, st.Block, "box-shadow"); got != tt.shadow {
				t.Errorf("box-shadow = %q, want %q", got, tt.shadow)
			}
			if got := get(t, st.Block, "padding-bottom"); got == "" {
				t.Error("padding-bottom not set")
			}
		})
	}
}

func TestImageStyle(t *testing.T) {
	auto := model.ImageContent{
		Src:       "a.png",
		Alignment: model.ImageAuto,
		MaxWidth:  model.Ptr(600.0),
		Border:    &model.ImageBorder{Enabled: true, Color: "#000000", Width: 1, Style: "dashed"},
	}
	container, picture, caption := ImageStyle(auto)
	if got := get(t, picture, "width"); got != "100%" {
		t.Errorf("auto width = %q", got)
	}
	if got := get(t, picture, "max-width"); got != "600px" {
		t.Errorf("auto max-width = %q", got)
	}
	if got := get(t, picture, "border"); got != "1px dashed #000000" {
		t.Errorf("border = %q", got)
	}
	if got := get(t, caption, "text-align"); got != "center" {
		t.Errorf("caption align = %q", got)
	}
	if _, ok := container.Get("margin-bottom"); !ok {
		t.Error("container has no margin")
	}

	fixed := model.ImageContent{
		Src:       "a.png",
		Alignment: model.ImageRight,
		Width:     model.Ptr(200.0),
	}
	container, picture, caption = ImageStyle(fixed)
	if got := get(t, picture, "width"); got != "200px" {
		t.Errorf("fixed width = %q", got)
	}
	if got := get(t, picture, "height"); got != "auto" {
		t.Errorf("fixed height = %q", got)
	}
	if got := get(t, container, "text-align"); got != "right" {
		t.Errorf("container align = %q", got)
	}
	if got := get(t, caption, "text-align"); got != "right" {
		t.Errorf("caption align = %q", got)
	}
	if _, ok := picture.Get("border"); ok {
		t.Error("border set for image without border")
	}
}

func TestPageStyle(t *testing.T) {
	tpl := testTemplate()
	d := PageStyle(tpl)
	if got := get(t, d, "padding"); got != "43.2px 57.6px 43.2px 57.6px" {
		t.Errorf("padding = %q", got)
	}
	if got := get(t, d, "min-height"); got != "673.6px" {
		t.Errorf("min-height = %q", got)
	}
	if got := get(t, d, "font-size"); got != "12pt" {
		t.Errorf("font-size = %q", got)
	}
}

func TestTableStyle(t *testing.T) {
	table, border, padding := TableStyle(nil)
	if border != "1px solid #000000" || padding != "0" {
		t.Errorf("default border %q padding %q", border, padding)
	}
	if got := get(t, table, "width"); got != "auto" {
		t.Errorf("default width = %q", got)
	}

	table, border, padding = TableStyle(&model.TableStyle{
		BorderStyle: model.TableBorderNone,
		CellPadding: model.Ptr(8.0),
		CellSpacing: model.Ptr(2.0),
		Width:       &model.TableWidth{Mode: "full"},
	})
	if border != "none" || padding != "8px" {
		t.Errorf("border %q padding %q", border, padding)
	}
	if got := get(t, table, "width"); got != "100%" {
		t.Errorf("width = %q", got)
	}
	if got := get(t, table, "border-collapse"); got != "separate" {
		t.Errorf("border-collapse = %q", got)
	}
	if got := get(t, table, "border-spacing"); got != "2px" {
		t.Errorf("border-spacing = %q", got)
	}
}
