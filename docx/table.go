package docx

import (
	"fmt"

	"wtpl/css"
	"wtpl/format"
	"wtpl/htmlfrag"
	"wtpl/model"
	"wtpl/units"
)

// vspan tracks cell merged vertically which still covers rows below.
type vspan struct {
	remaining int
	span      int
	width     int
}

// table converts table block. Rows are full grids: cell i of a row sits in
// grid column i and hidden cells mark positions covered by a merge.
func (b *builder) table(block *model.Block, c model.TableContent) (*Table, error) {
	style := c.Style
	if style == nil {
		style = &model.TableStyle{BorderStyle: model.TableBorderSolid}
	}
	resolved := format.Resolve(block, &b.t.Format)

	cols := 0
	for _, row := range c.Rows {
		cols = max(cols, len(row))
		for i, cell := range row {
			if !cell.Hidden {
				cols = max(cols, i+max(cell.ColSpan, 1))
			}
		}
	}
	if cols == 0 {
		return nil, fmt.Errorf("table has no cells")
	}

	tbl := &Table{
		Borders: tableBorders(style),
	}

	total := units.Twips(b.t.Format.Page.ContentWidth())
	switch w := style.Width; {
	case w == nil || w.Mode == "auto":
		tbl.Width = Width{Type: WidthAuto}
	case w.Mode == "full":
		tbl.Width = Width{Type: WidthPct, W: 5000}
	default:
		total = units.Twips(w.Fixed)
		tbl.Width = Width{Type: WidthDxa, W: total}
	}
	tbl.Grid = make([]int, cols)
	for i := range tbl.Grid {
		tbl.Grid[i] = total / cols
	}
	spanWidth := func(start, span int) int {
		w := 0
		for i := start; i < min(start+span, cols); i++ {
			w += tbl.Grid[i]
		}
		return w
	}

	if style.CellPadding != nil {
		pad := units.Twips(units.ToPoints(*style.CellPadding, units.Px, 0))
		tbl.CellMargins = &Margins{Top: pad, Right: pad, Bottom: pad, Left: pad}
	}
	if style.CellSpacing != nil {
		tbl.CellSpacing = units.Twips(units.ToPoints(*style.CellSpacing, units.Px, 0))
	}

	active := make(map[int]*vspan)
	for r, row := range c.Rows {
		header := r < style.HeaderRows
		out := &Row{Header: header}
		for col := 0; col < len(row); col++ {
			cell := row[col]
			if cell.Hidden {
				v, ok := active[col]
				if !ok {
					continue
				}
				out.Cells = append(out.Cells, &Cell{
					Width:      v.width,
					GridSpan:   v.span,
					VMerge:     VMergeContinue,
					Paragraphs: []*Paragraph{{}},
				})
				if v.remaining--; v.remaining == 0 {
					delete(active, col)
				}
				col += v.span - 1
				continue
			}
			delete(active, col)

			span := max(cell.ColSpan, 1)
			out.Cells = append(out.Cells, b.cell(cell, resolved, style, header, spanWidth(col, span), span))
			if cell.RowSpan > 1 {
				out.Cells[len(out.Cells)-1].VMerge = VMergeRestart
				active[col] = &vspan{remaining: cell.RowSpan - 1, span: span, width: spanWidth(col, span)}
			}
			col += span - 1
		}
		if len(out.Cells) > 0 {
			tbl.Rows = append(tbl.Rows, out)
		}
	}
	return tbl, nil
}

// cell converts table cell content. Header rows use header style for
// properties the cell does not define itself.
func (b *builder) cell(cell model.TableCell, resolved format.Resolved, style *model.TableStyle, header bool, width, span int) *Cell {
	var bg, align, valign string
	if cs := cell.Style; cs != nil {
		bg, align, valign = cs.BackgroundColor, cs.TextAlign, cs.VerticalAlign
	}
	bold := false
	if hs := style.HeaderStyle; header && hs != nil {
		bg = orDefault(bg, hs.BackgroundColor)
		align = orDefault(align, hs.TextAlign)
		bold = hs.FontBold
	}

	res := &Cell{Width: width}
	if span > 1 {
		res.GridSpan = span
	}
	if bg != "" {
		res.Shading = css.HexNoHash(css.NormalizeColor(bg))
	}
	switch valign {
	case "middle", "center":
		res.VAlign = "center"
	case "top", "bottom":
		res.VAlign = valign
	}

	font := resolved.Font
	font.Bold = font.Bold || bold

	segments, err := htmlfrag.Parse(cell.Content)
	if err != nil {
		b.log.Debug("Unable to parse table cell, using literal text")
		segments = []htmlfrag.Segment{{Runs: []htmlfrag.Run{{Text: cell.Content}}}}
	}
	for _, seg := range segments {
		p := cellParagraph(resolved, cellAlignment(align, resolved.Paragraph.Alignment))
		for _, run := range seg.Runs {
			p.Runs = append(p.Runs, b.run(run, font))
		}
		res.Paragraphs = append(res.Paragraphs, p)
	}
	if len(res.Paragraphs) == 0 {
		res.Paragraphs = []*Paragraph{cellParagraph(resolved, cellAlignment(align, resolved.Paragraph.Alignment))}
	}
	return res
}

func cellAlignment(textAlign string, def model.Alignment) string {
	switch textAlign {
	case "left", "center", "right":
		return textAlign
	case "justify":
		return "both"
	}
	return alignment(def)
}

func tableBorders(style *model.TableStyle) *Borders {
	if style.BorderStyle == model.TableBorderNone {
		return AllBorders(NoBorder())
	}
	kind := "single"
	switch style.BorderStyle {
	case model.TableBorderDashed:
		kind = "dashed"
	case model.TableBorderDotted:
		kind = "dotted"
	}
	return AllBorders(&Border{
		Style: kind,
		Size:  units.EighthPoints(deref(style.BorderWidth, 1)),
		Color: css.HexNoHash(css.NormalizeColor(orDefault(style.BorderColor, model.DefaultColor))),
	})
}
