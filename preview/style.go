// Package preview approximates exported document with HTML and CSS using
// the same format resolution as export.
package preview

import (
	"fmt"
	"math"
	"strconv"

	"wtpl/css"
	"wtpl/format"
	"wtpl/model"
	"wtpl/units"
)

// Style is computed presentation of a content block.
type Style struct {
	// Block is container style: spacing, alignment, indents and border.
	Block css.Declarations
	// Font is applied to block content, inline HTML styles override it.
	Font css.Declarations
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

func pt(v float64) string {
	return num(v) + "pt"
}

// BuildStyle computes block style from effective format.
func BuildStyle(block *model.Block, t *model.Template) Style {
	r := format.Resolve(block, &t.Format)

	var s Style
	s.Block.Set("margin-bottom", "16px")
	s.Block.Set("position", "relative")
	paragraphStyle(&s.Block, r)
	s.Font = fontStyle(r.Font)
	return s
}

func paragraphStyle(d *css.Declarations, r format.Resolved) {
	p := r.Paragraph
	size := r.Font.Size

	if p.Alignment != "" {
		d.Set("text-align", string(p.Alignment))
	}
	if p.LineHeight > 0 {
		d.Set("line-height", num(p.LineHeight))
	}
	d.Set("margin-bottom", pt(p.ParagraphSpacing))
	if p.SpaceBefore > 0 {
		d.Set("margin-top", pt(p.SpaceBefore))
	}
	if ind := p.Indent; ind.FirstLine != 0 {
		d.Set("text-indent", units.CSSLength(ind.FirstLine, ind.FirstLineUnit, size))
	}
	if ind := p.Indent; ind.Left != 0 {
		d.Set("padding-left", units.CSSLength(ind.Left, ind.LeftUnit, size))
	}
	if ind := p.Indent; ind.Right != 0 {
		d.Set("padding-right", units.CSSLength(ind.Right, ind.RightUnit, size))
	}
	borderStyle(d, r.BottomBorder())
}

// borderStyle maps bottom border. Thick over thin rule has no CSS
// equivalent and is drawn as border plus shifted shadow.
func borderStyle(d *css.Declarations, b *model.BottomBorder) {
	if b == nil {
		return
	}
	switch b.Style {
	case model.BorderSingle:
		d.Set("border-bottom", fmt.Sprintf("%s solid %s", px(b.Size), b.Color))
	case model.BorderDouble:
		d.Set("border-bottom", fmt.Sprintf("%s double %s", px(b.Size), b.Color))
	case model.BorderThickThin:
		size := b.Size
		if size == 0 {
			size = 2
		}
		d.Set("border-bottom", fmt.Sprintf("%s solid %s", px(size), b.Color))
		d.Set("box-shadow", fmt.Sprintf("0 %s 0 0 %s", px(size+1), b.Color))
	}
	d.Set("padding-bottom", pt(b.Space))
}

func fontStyle(f model.FontSettings) css.Declarations {
	var d css.Declarations
	d.Set("font-family", format.PreviewFontFamily(f.Family))
	if f.Size > 0 {
		d.Set("font-size", pt(f.Size))
	}
	if f.Color != "" {
		d.Set("color", f.Color)
	}
	d.Set("font-weight", choose(f.Bold, "bold", "normal"))
	d.Set("font-style", choose(f.Italic, "italic", "normal"))
	d.Set("text-decoration", choose(f.Underline, "underline", "none"))
	return d
}

func choose(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// ImageStyle returns styles of picture container, the picture itself and
// its caption. Auto aligned pictures fill available width up to max width.
func ImageStyle(img model.ImageContent) (container, picture, caption css.Declarations) {
	container.Set("margin-bottom", "16px")
	container.Set("position", "relative")

	maxWidth, maxHeight := "100%", "auto"
	if img.MaxWidth != nil && *img.MaxWidth > 0 {
		maxWidth = px(*img.MaxWidth)
	}
	if img.MaxHeight != nil && *img.MaxHeight > 0 {
		maxHeight = px(*img.MaxHeight)
	}

	captionAlign := string(img.Alignment)
	if img.Alignment == model.ImageAuto {
		picture.Set("width", "100%")
		picture.Set("height", "auto")
		picture.Set("max-width", maxWidth)
		picture.Set("max-height", maxHeight)
		picture.Set("display", "block")
		picture.Set("margin", "0 auto")
		container.Set("text-align", "initial")
		captionAlign = "center"
	} else {
		picture.Set("max-width", maxWidth)
		picture.Set("max-height", maxHeight)
		picture.Set("width", sizeOrAuto(img.Width))
		picture.Set("height", sizeOrAuto(img.Height))
		picture.Set("display", "inline-block")
		switch img.Alignment {
		case model.ImageCenter, model.ImageRight:
			container.Set("text-align", string(img.Alignment))
		default:
			container.Set("text-align", "left")
			captionAlign = "left"
		}
	}

	if b := img.Border; b != nil && b.Enabled {
		picture.Set("border", fmt.Sprintf("%s %s %s", px(b.Width), b.Style, b.Color))
	}

	caption.Set("margin-top", "8px")
	caption.Set("font-size", "12px")
	caption.Set("color", "#666")
	caption.Set("font-style", "italic")
	caption.Set("text-align", captionAlign)
	return container, picture, caption
}

func sizeOrAuto(v *float64) string {
	if v == nil || *v == 0 {
		return "auto"
	}
	return px(*v)
}

// PageStyle is style of the page element, margins are scaled down to fit
// on screen.
func PageStyle(t *model.Template) css.Declarations {
	pg := t.Format.Page
	var d css.Declarations
	d.Set("width", "100%")
	d.Set("min-height", px(pg.Height*0.8))
	d.Set("background-color", "white")
	d.Set("box-shadow", "0 2px 4px rgba(0, 0, 0, 0.1)")
	d.Set("padding", fmt.Sprintf("%s %s %s %s",
		px(pg.Margins.Top*0.6), px(pg.Margins.Right*0.8), px(pg.Margins.Bottom*0.6), px(pg.Margins.Left*0.8)))
	for _, decl := range fontStyle(t.Format.Font) {
		d.Set(decl.Property, decl.Value.Raw)
	}
	if lh := t.Format.Paragraph.LineHeight; lh > 0 {
		d.Set("line-height", num(lh))
	}
	if a := t.Format.Paragraph.Alignment; a != "" {
		d.Set("text-align", string(a))
	}
	d.Set("position", "relative")
	d.Set("margin", "0")
	d.Set("box-sizing", "border-box")
	return d
}

// TableStyle returns style of table element with cell border and padding values.
func TableStyle(s *model.TableStyle) (table css.Declarations, border string, padding string) {
	if s == nil {
		s = &model.TableStyle{BorderStyle: model.TableBorderSolid}
	}
	table.Set("border-collapse", "collapse")
	switch w := s.Width; {
	case w == nil || w.Mode == "auto":
		table.Set("width", "auto")
	case w.Mode == "full":
		table.Set("width", "100%")
	default:
		table.Set("width", pt(w.Fixed))
	}
	if s.CellSpacing != nil && *s.CellSpacing > 0 {
		table.Set("border-collapse", "separate")
		table.Set("border-spacing", px(*s.CellSpacing))
	}

	border = "none"
	if s.BorderStyle != model.TableBorderNone {
		width := 1.0
		if s.BorderWidth != nil {
			width = *s.BorderWidth
		}
		style := string(s.BorderStyle)
		if style == "" {
			style = string(model.TableBorderSolid)
		}
		color := s.BorderColor
		if color == "" {
			color = model.DefaultColor
		}
		border = fmt.Sprintf("%s %s %s", px(width), style, color)
	}
	padding = "0"
	if s.CellPadding != nil {
		padding = px(*s.CellPadding)
	}
	return table, border, padding
}
