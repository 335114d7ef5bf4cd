package docx

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wtpl/config"
	"wtpl/css"
	"wtpl/format"
	"wtpl/htmlfrag"
	"wtpl/model"
	"wtpl/units"
)

// fallbackFont is used when neither HTML nor block format name a font.
const fallbackFont = "Microsoft YaHei"

// Options controls document building.
type Options struct {
	Config *config.DocumentConfig
	Fonts  format.FontMap
	// Images is used to resolve image blocks, when nil image loader is
	// created from Config without remote fetching.
	Images *ImageLoader
}

type builder struct {
	t      *model.Template
	cfg    *config.DocumentConfig
	fonts  format.FontMap
	images *ImageLoader
	doc    *Document
	log    *zap.Logger

	pictures int
}

// Build converts template into document object tree. Blocks which cannot
// be converted are skipped and reported in the log, only context
// cancellation stops the build.
func Build(ctx context.Context, t *model.Template, opts Options, log *zap.Logger) (*Document, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = defaultDocumentConfig()
	}
	fonts := opts.Fonts
	if fonts == nil {
		fonts = format.DefaultFontMap.Merge(cfg.Fonts.Names)
	}
	loader := opts.Images
	if loader == nil {
		imgCfg := cfg.Images
		imgCfg.FetchRemote = false
		loader = NewImageLoader(&imgCfg, nil, log)
	}

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	b := &builder{
		t:      t,
		cfg:    cfg,
		fonts:  fonts,
		images: loader,
		log:    log,
		doc: &Document{
			Title:       t.Name,
			Description: t.Description,
			Creator:     cfg.Creator,
			Created:     created,
			DefaultFont: fonts.WordName(orDefault(t.Format.Font.Family, fallbackFont)),
			DefaultSize: units.HalfPoints(orDefaultNum(t.Format.Font.Size, model.DefaultFontSize)),
			Section:     section(t.Format.Page),
		},
	}

	var errs error
	for _, block := range t.SortedBlocks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elements, err := b.block(ctx, block)
		if err != nil {
			log.Warn("Unable to convert block, skipping",
				zap.String("id", block.ID), zap.String("type", string(block.Type)), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("block %s: %w", block.ID, err))
			continue
		}
		b.doc.Body = append(b.doc.Body, elements...)
	}
	if errs != nil {
		log.Info("Some blocks were skipped", zap.Int("count", len(multierr.Errors(errs))))
	}
	log.Debug("Document built", zap.Int("elements", len(b.doc.Body)), zap.Int("media", len(b.doc.Media)))
	return b.doc, nil
}

func defaultDocumentConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		Creator: "wtpl",
		Images: config.ImagesConfig{
			DefaultWidth:       200,
			DefaultHeight:      150,
			AutoFallbackHeight: 300,
			ConvertUnsupported: true,
			JPEGQuality:        85,
		},
	}
}

func section(p model.PageSettings) Section {
	s := Section{
		Width:  units.Twips(p.Width),
		Height: units.Twips(p.Height),
		Margins: Margins{
			Top:    units.Twips(p.Margins.Top),
			Right:  units.Twips(p.Margins.Right),
			Bottom: units.Twips(p.Margins.Bottom),
			Left:   units.Twips(p.Margins.Left),
		},
		Landscape: p.Orientation == model.Landscape,
	}
	if s.Landscape && s.Width < s.Height {
		s.Width, s.Height = s.Height, s.Width
	}
	return s
}

func (b *builder) block(ctx context.Context, block *model.Block) ([]Element, error) {
	if !model.ContentMatches(block.Type, block.Content) {
		return nil, model.ErrContentMismatch
	}
	switch c := block.Content.(type) {
	case model.TextContent:
		ps, err := b.text(block, string(c))
		if err != nil {
			return nil, err
		}
		return paragraphs(ps), nil
	case model.ImageContent:
		return b.image(ctx, block, c)
	case model.PageBreakContent:
		return b.pageBreak(c), nil
	case model.TableContent:
		tbl, err := b.table(block, c)
		if err != nil {
			return nil, err
		}
		return []Element{tbl}, nil
	case model.TwoColumnContent:
		return []Element{b.twoColumn(block, c)}, nil
	}
	return nil, fmt.Errorf("unknown block type %q", block.Type)
}

func paragraphs(ps []*Paragraph) []Element {
	res := make([]Element, len(ps))
	for i, p := range ps {
		res[i] = p
	}
	return res
}

// text converts rich text fragment. Headings always get HeadingN style,
// heading format is used for them only when block enables it.
func (b *builder) text(block *model.Block, fragment string) ([]*Paragraph, error) {
	resolved := format.Resolve(block, &b.t.Format)
	heading, hasHeading := format.Heading(block, resolved)

	segments, err := htmlfrag.Parse(fragment)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}

	res := make([]*Paragraph, 0, max(len(segments), 1))
	for _, seg := range segments {
		r, style := resolved, ""
		if seg.Kind == htmlfrag.KindHeading {
			style = fmt.Sprintf("Heading%d", seg.Level)
			if hasHeading {
				r = heading
			}
		}
		p := paragraph(r, seg.Kind, seg.Level)
		p.Style = style
		for _, run := range seg.Runs {
			p.Runs = append(p.Runs, b.run(run, r.Font))
		}
		res = append(res, p)
	}
	if len(res) == 0 {
		res = append(res, paragraph(resolved, htmlfrag.KindParagraph, 0))
	}
	return res, nil
}

// run merges HTML style with block font. Booleans are additive, HTML
// values win otherwise. List markers use block font only.
func (b *builder) run(r htmlfrag.Run, font model.FontSettings) *Run {
	s := r.Style
	if r.Marker {
		s = htmlfrag.Style{}
	}
	res := &Run{
		Text:      r.Text,
		Font:      b.fonts.WordName(orDefault(s.Font, orDefault(font.Family, fallbackFont))),
		Size:      units.HalfPoints(orDefaultNum(s.Size, orDefaultNum(font.Size, model.DefaultFontSize))),
		Color:     css.HexNoHash(orDefault(s.Color, orDefault(font.Color, model.DefaultColor))),
		Bold:      s.Bold || font.Bold,
		Italic:    s.Italic || font.Italic,
		Underline: s.Underline || font.Underline,
	}
	if r.Text == "\n" {
		res.Text, res.Break = "", LineBreak
	}
	return res
}

// plainRun is a run of literal text in resolved font.
func (b *builder) plainRun(text string, font model.FontSettings) *Run {
	return b.run(htmlfrag.Run{Text: text}, font)
}

// paragraph builds paragraph properties from resolved format. List items
// use half spacing and hanging indent by level, quotes are indented.
func paragraph(r format.Resolved, kind htmlfrag.Kind, level int) *Paragraph {
	ps := r.Paragraph
	p := &Paragraph{
		Alignment: alignment(ps.Alignment),
		Spacing: &Spacing{
			Line:   units.LineTwips(ps.LineHeight),
			After:  units.Twips(ps.ParagraphSpacing),
			Before: units.Twips(ps.SpaceBefore),
		},
		Indent: &Indent{
			FirstLine: units.Twips(units.ToPoints(ps.Indent.FirstLine, ps.Indent.FirstLineUnit, r.Font.Size)),
			Left:      units.Twips(units.ToPoints(ps.Indent.Left, ps.Indent.LeftUnit, r.Font.Size)),
			Right:     units.Twips(units.ToPoints(ps.Indent.Right, ps.Indent.RightUnit, r.Font.Size)),
		},
		Bottom: bottomBorder(r.BottomBorder()),
	}
	switch kind {
	case htmlfrag.KindListItem:
		p.Spacing.After = int(math.Round(ps.ParagraphSpacing * 10))
		p.Spacing.Before = int(math.Round(ps.SpaceBefore * 10))
		p.Indent.Left += (level + 1) * 360
	case htmlfrag.KindQuote:
		p.Indent.Left += 720
	}
	return p
}

func alignment(a model.Alignment) string {
	switch a {
	case model.AlignCenter:
		return "center"
	case model.AlignRight:
		return "right"
	case model.AlignJustify:
		return "both"
	default:
		return "left"
	}
}

// borderStyle maps paragraph border style to WordprocessingML value.
func borderStyle(s model.BorderStyle) string {
	switch s {
	case model.BorderDouble:
		return "double"
	case model.BorderThickThin:
		return "thinThickMediumGap"
	default:
		return "single"
	}
}

func bottomBorder(bb *model.BottomBorder) *Border {
	if bb == nil {
		return nil
	}
	return &Border{
		Style: borderStyle(bb.Style),
		Size:  units.EighthPoints(orDefaultNum(bb.Size, 1)),
		Space: int(math.Round(orDefaultNum(bb.Space, 1))),
		Color: css.HexNoHash(bb.Color),
	}
}

func (b *builder) pageBreak(c model.PageBreakContent) []Element {
	res := []Element{pageBreakParagraph()}
	if c.Settings.AddBlankPage {
		res = append(res, pageBreakParagraph())
	}
	return res
}

func pageBreakParagraph() *Paragraph {
	return &Paragraph{Runs: []*Run{{Break: PageBreak}}}
}

// twoColumn lays out left and right text in borderless two cell table. A
// bottom rule is drawn as top border of an extra row spanning both columns.
func (b *builder) twoColumn(block *model.Block, c model.TwoColumnContent) *Table {
	resolved := format.Resolve(block, &b.t.Format)
	ratio := format.ColumnRatio(block)
	grid := []int{int(math.Round(9000 * ratio)), int(math.Round(9000 * (1 - ratio)))}

	cell := func(text string, align string, width int) *Cell {
		p := cellParagraph(resolved, align)
		p.Runs = []*Run{b.plainRun(text, resolved.Font)}
		return &Cell{
			Width:      width,
			Borders:    noBorders(),
			Paragraphs: []*Paragraph{p},
		}
	}

	tbl := &Table{
		Width:   Width{Type: WidthPct, W: 5000},
		Grid:    grid,
		Borders: AllBorders(NoBorder()),
		Rows: []*Row{{Cells: []*Cell{
			cell(c.Left, "left", grid[0]),
			cell(c.Right, "right", grid[1]),
		}}},
	}

	if bb := resolved.BottomBorder(); bb != nil {
		top := 20
		if bb.Space != 0 {
			top = units.Twips(bb.Space)
		}
		borders := noBorders()
		borders.Top = &Border{
			Style: borderStyle(bb.Style),
			Size:  units.EighthPoints(orDefaultNum(bb.Size, 1)),
			Color: css.HexNoHash(bb.Color),
		}
		tbl.Rows = append(tbl.Rows, &Row{Cells: []*Cell{{
			Width:      grid[0] + grid[1],
			GridSpan:   2,
			Borders:    borders,
			Margins:    &Margins{Top: top},
			Paragraphs: []*Paragraph{{}},
		}}})
	}
	return tbl
}

// cellParagraph has line and after spacing plus indent, but no border.
func cellParagraph(r format.Resolved, align string) *Paragraph {
	p := paragraph(r, htmlfrag.KindParagraph, 0)
	p.Alignment = align
	p.Spacing.Before = 0
	p.Bottom = nil
	return p
}

func noBorders() *Borders {
	return &Borders{Top: NoBorder(), Left: NoBorder(), Bottom: NoBorder(), Right: NoBorder()}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func orDefaultNum(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
