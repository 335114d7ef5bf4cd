package importer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"wtpl/docx"
	"wtpl/model"
)

// exported writes template as Word document.
func exported(t *testing.T, tpl *model.Template) []byte {
	t.Helper()
	doc, err := docx.Build(context.Background(), tpl, docx.Options{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	var buf bytes.Buffer
	if err := docx.Write(&buf, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.Bytes()
}

func sourceTemplate(t *testing.T) *model.Template {
	tpl := model.NewTemplate(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC))
	tpl.Name = "年度报告"

	intro := model.NewBlock(model.BlockText, 0)
	intro.Content = model.TextContent("<h1>标题一</h1><p>正文内容</p>")
	intro.Format.EnableHeadingFormat = true
	intro.Format.HeadingFormat = &model.HeadingFormat{Font: &model.FontOverride{Size: model.Ptr(18.0), Bold: model.Ptr(true)}}

	img := model.NewBlock(model.BlockImage, 3)
	img.Content = model.ImageContent{
		Src:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(testPNG(t)),
		Alt:       "示意图",
		Alignment: model.ImageCenter,
	}

	todo := model.NewBlock(model.BlockText, 4)
	todo.Content = model.TextContent("<p>请输入内容</p>")

	tpl.Content = []*model.Block{
		intro,
		model.NewBlock(model.BlockPageBreak, 1),
		model.NewBlock(model.BlockTable, 2),
		img,
		todo,
	}
	return tpl
}

func TestImport_RoundTrip(t *testing.T) {
	data := exported(t, sourceTemplate(t))

	tpl, err := Import(context.Background(), data, "", testConfig("single"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if tpl.Name != "年度报告" || tpl.Description != importDescription {
		t.Errorf("name = %q, description = %q", tpl.Name, tpl.Description)
	}
	if tpl.Format.Paragraph.LineHeight != importLineHeight {
		t.Errorf("line height = %v", tpl.Format.Paragraph.LineHeight)
	}

	want := []model.BlockType{model.BlockText, model.BlockText, model.BlockPageBreak, model.BlockTable, model.BlockImage, model.BlockAI}
	if len(tpl.Content) != len(want) {
		for _, b := range tpl.Content {
			t.Logf("%s %q", b.Type, b.Title)
		}
		t.Fatalf("got %d blocks, want %d", len(tpl.Content), len(want))
	}
	for i, b := range tpl.Content {
		if b.Type != want[i] {
			t.Errorf("block %d type = %s, want %s", i, b.Type, want[i])
		}
		if b.Position != i {
			t.Errorf("block %d position = %d", i, b.Position)
		}
		if !model.ContentMatches(b.Type, b.Content) {
			t.Errorf("block %d content %T does not match %s", i, b.Content, b.Type)
		}
	}

	heading := tpl.Content[0]
	if heading.Title != "标题一" || !strings.HasPrefix(string(heading.Content.(model.TextContent)), "<h1>") {
		t.Errorf("heading block = %q %v", heading.Title, heading.Content)
	}
	if f := heading.Format.Font; f == nil || f.Size == nil || *f.Size != 18 || !*f.Bold {
		t.Errorf("heading font = %+v", f)
	}
	if heading.Format.UsesGlobal() {
		t.Error("imported block should carry own format")
	}

	if tbl := tpl.Content[3].Content.(model.TableContent); len(tbl.Rows) != 2 || len(tbl.Rows[0]) != 2 {
		t.Errorf("table rows = %+v", tbl.Rows)
	}

	img := tpl.Content[4].Content.(model.ImageContent)
	if !strings.HasPrefix(img.Src, "data:image/") || img.Alt != "示意图" || img.Alignment != model.ImageCenter {
		t.Errorf("image = %.40s %q %s", img.Src, img.Alt, img.Alignment)
	}

	ai := tpl.Content[5]
	if ai.AIPrompt != "请根据标题“请输入内容”编写内容" || ai.AISettings == nil {
		t.Errorf("ai block prompt = %q settings = %v", ai.AIPrompt, ai.AISettings)
	}
}

func TestImport_Name(t *testing.T) {
	data := exported(t, sourceTemplate(t))
	tpl, err := Import(context.Background(), data, " 新名称 ", testConfig("merge-same-style"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if tpl.Name != "新名称" {
		t.Errorf("Name = %q", tpl.Name)
	}
}

func TestImport_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data := exported(t, sourceTemplate(t))
	if _, err := Import(ctx, data, "", testConfig("single"), zaptest.NewLogger(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Import() error = %v, want context.Canceled", err)
	}

	cfg := testConfig("single")
	cfg.AIPromptTemplate = "{{ .Title"
	if _, err := Import(context.Background(), data, "", cfg, zaptest.NewLogger(t)); err == nil {
		t.Error("Import() expected error for bad prompt template")
	}
}

func TestSummarize(t *testing.T) {
	a := para("a")
	a.Style = Style{FontSize: 14, FontFamily: "黑体", TextIndent: 24, Bold: true}
	b := para("b")
	b.Style = Style{FontSize: 12, FontFamily: "宋体", Bold: true}
	c := para("c")
	c.Style = Style{FontSize: 12, FontFamily: "宋体"}

	s := summarize([]*Element{a, b, c})
	if s.FontSize != 12 || s.FontFamily != "宋体" || s.TextIndent != 24 || s.Bold {
		t.Errorf("summarize() = %+v", s)
	}

	h := &Element{Kind: KindHeading, Level: 2, Text: "h"}
	if s := summarize([]*Element{h}); s.FontSize != 18 {
		t.Errorf("heading default size = %v", s.FontSize)
	}
}

func TestBlockFormat(t *testing.T) {
	f := blockFormat(Style{FontSize: 14, Color: "#ff0000", LineHeight: 1.5, TextIndent: 28, SpaceAfter: 6})
	if *f.Font.Size != 14 || *f.Font.Color != "#ff0000" || f.Font.Family != nil {
		t.Errorf("font = %+v", f.Font)
	}
	p := f.Paragraph
	if *p.LineHeight != 1.5 || *p.ParagraphSpacing != 6 || *p.Indent.FirstLine != 28 || *p.Alignment != model.AlignLeft {
		t.Errorf("paragraph = %+v", p)
	}
}
