package importer

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"wtpl/config"
	"wtpl/model"
	"wtpl/units"
)

const (
	importDescription = "从Word文档导入"
	fallbackPrompt    = "请根据上下文生成相关内容"
	importLineHeight  = 1.5
)

// default sizes of headings which do not specify font size
var headingSizes = [...]float64{22, 18, 16, 14, 12, 12}

// PromptValues are available to AI prompt template.
type PromptValues struct {
	Title string
	Text  string
}

// Import reads Word document and builds template out of it. Name is used
// as template name, when empty document title is used.
func Import(ctx context.Context, data []byte, name string, cfg *config.ImportConfig, log *zap.Logger) (*model.Template, error) {
	doc, err := Read(data, log)
	if err != nil {
		return nil, err
	}
	rules, err := DefaultRules(cfg)
	if err != nil {
		return nil, err
	}
	groups := Segment(doc.Elements, cfg, rules)
	log.Debug("Document segmented", zap.Int("elements", len(doc.Elements)), zap.Int("groups", len(groups)), zap.String("mode", cfg.Grouping))

	b := &templateBuilder{cfg: cfg, log: log}
	if b.prompt, err = parsePrompt(cfg.AIPromptTemplate); err != nil {
		return nil, err
	}

	t := model.NewTemplate(time.Now())
	t.Name = cmp.Or(strings.TrimSpace(name), doc.Title, t.Name)
	t.Description = importDescription
	t.Format.Font = globalFont(doc.Elements)
	t.Format.Paragraph.LineHeight = importLineHeight
	t.Format.Paragraph.ParagraphSpacing = 0
	t.Format.Paragraph.SpaceBefore = 0

	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		block, err := b.block(g, i)
		if err != nil {
			return nil, err
		}
		t.Content = append(t.Content, block)
	}
	log.Info("Word document imported", zap.String("name", t.Name), zap.Int("blocks", len(t.Content)))
	return t, nil
}

func parsePrompt(field string) (*template.Template, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}
	tmpl, err := template.New(string(config.AIPromptTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", config.AIPromptTemplateFieldName, err)
	}
	return tmpl, nil
}

type templateBuilder struct {
	cfg    *config.ImportConfig
	prompt *template.Template
	log    *zap.Logger
}

func (b *templateBuilder) block(g *Group, position int) (*model.Block, error) {
	block := model.NewBlock(g.Suggested, position)
	block.Title = g.Title
	first := g.Elements[0]

	switch g.Suggested {
	case model.BlockPageBreak:
		block.Content = model.PageBreakContent{
			Type:     string(model.BlockPageBreak),
			Settings: model.PageBreakSettings{AddBlankPage: len(g.Elements) > 1, PageOrientation: model.Portrait},
		}
		return block, nil
	case model.BlockImage:
		block.Content = imageContent(first.Image)
		return block, nil
	case model.BlockTable:
		block.Content = *first.Table
		return block, nil
	}

	var html, text []string
	for _, e := range g.Elements {
		switch e.Kind {
		case KindImage:
			html = append(html, `<p><img src="`+e.Image.Src+`" alt="`+template.HTMLEscapeString(e.Image.Alt)+`"></p>`)
		default:
			html = append(html, e.HTML)
		}
		if e.Text != "" {
			text = append(text, e.Text)
		}
	}
	block.Content = model.TextContent(strings.Join(html, ""))
	block.Format = blockFormat(summarize(g.Elements))

	if g.Suggested == model.BlockAI {
		prompt, err := b.aiPrompt(PromptValues{Title: g.Title, Text: strings.Join(text, "\n")})
		if err != nil {
			return nil, err
		}
		block.AIPrompt = prompt
		block.AISettings = model.DefaultAISettings()
	}
	return block, nil
}

func (b *templateBuilder) aiPrompt(v PromptValues) (string, error) {
	if b.prompt == nil {
		return fallbackPrompt, nil
	}
	buf := new(bytes.Buffer)
	if err := b.prompt.Execute(buf, v); err != nil {
		return "", fmt.Errorf("unable to expand AI prompt: %w", err)
	}
	return cmp.Or(strings.TrimSpace(buf.String()), fallbackPrompt), nil
}

func imageContent(img *ImageData) model.ImageContent {
	c := model.ImageContent{
		Src:       img.Src,
		Alt:       img.Alt,
		Caption:   img.Alt,
		Alignment: model.ImageCenter,
		Border:    &model.ImageBorder{Color: "#cccccc", Width: 1, Style: "solid"},
	}
	if img.Width > 0 {
		c.Width = model.Ptr(img.Width)
	}
	if img.Height > 0 {
		c.Height = model.Ptr(img.Height)
	}
	return c
}

// summarize returns style of group: for several elements the most common
// font and paragraph settings, indents and spacing of the first one.
func summarize(els []*Element) Style {
	var texts []*Element
	for _, e := range els {
		if e.Kind == KindParagraph || e.Kind == KindHeading {
			texts = append(texts, e)
		}
	}
	if len(texts) == 0 {
		return Style{}
	}
	s := texts[0].Style
	if len(texts) > 1 {
		s.FontSize = mostCommon(texts, func(e *Element) float64 { return elementSize(e) })
		s.FontFamily = mostCommon(texts, func(e *Element) string { return e.Style.FontFamily })
		s.Color = mostCommon(texts, func(e *Element) string { return e.Style.Color })
		s.Alignment = mostCommon(texts, func(e *Element) model.Alignment { return e.Style.Alignment })
		s.LineHeight = mostCommon(texts, func(e *Element) float64 { return e.Style.LineHeight })
		for _, e := range texts[1:] {
			s.Bold = s.Bold && e.Style.Bold
			s.Italic = s.Italic && e.Style.Italic
			s.Underline = s.Underline && e.Style.Underline
		}
	} else {
		s.FontSize = elementSize(texts[0])
	}
	return s
}

func elementSize(e *Element) float64 {
	if e.Style.FontSize == 0 && e.Kind == KindHeading && e.Level >= 1 && e.Level <= len(headingSizes) {
		return headingSizes[e.Level-1]
	}
	return e.Style.FontSize
}

// mostCommon returns most frequent non zero value, first seen wins ties.
func mostCommon[T comparable](els []*Element, get func(*Element) T) T {
	var (
		zero, best T
		counts     = make(map[T]int)
	)
	for _, e := range els {
		v := get(e)
		if v == zero {
			continue
		}
		counts[v]++
		if best == zero || counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

func blockFormat(s Style) model.BlockFormat {
	f := model.BlockFormat{
		UseGlobalFormat: model.Ptr(false),
		Style:           model.StyleNormal,
		Font: &model.FontOverride{
			Bold:      model.Ptr(s.Bold),
			Italic:    model.Ptr(s.Italic),
			Underline: model.Ptr(s.Underline),
		},
		Paragraph: &model.ParagraphOverride{
			ParagraphSpacing: model.Ptr(s.SpaceAfter),
			SpaceBefore:      model.Ptr(s.SpaceBefore),
			Alignment:        model.Ptr(alignmentOf(s)),
			Indent: &model.IndentOverride{
				FirstLine:     model.Ptr(s.TextIndent),
				FirstLineUnit: model.Ptr(units.Pt),
				Left:          model.Ptr(s.LeftIndent),
				LeftUnit:      model.Ptr(units.Pt),
				Right:         model.Ptr(s.RightIndent),
				RightUnit:     model.Ptr(units.Pt),
			},
		},
	}
	if s.FontSize > 0 {
		f.Font.Size = model.Ptr(s.FontSize)
	}
	if s.FontFamily != "" {
		f.Font.Family = model.Ptr(s.FontFamily)
	}
	if s.Color != "" {
		f.Font.Color = model.Ptr(s.Color)
	}
	if s.LineHeight > 0 {
		f.Paragraph.LineHeight = model.Ptr(s.LineHeight)
	}
	return f
}

// globalFont picks most common font of text elements.
func globalFont(els []*Element) model.FontSettings {
	var texts []*Element
	for _, e := range els {
		if e.Kind == KindParagraph || e.Kind == KindHeading {
			texts = append(texts, e)
		}
	}
	return model.FontSettings{
		Family: cmp.Or(mostCommon(texts, func(e *Element) string { return e.Style.FontFamily }), defaultImportFont),
		Size:   cmp.Or(mostCommon(texts, func(e *Element) float64 { return e.Style.FontSize }), model.DefaultFontSize),
		Color:  cmp.Or(mostCommon(texts, func(e *Element) string { return e.Style.Color }), model.DefaultColor),
	}
}
