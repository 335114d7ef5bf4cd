package docx

import (
	"fmt"
	"strconv"

	"wtpl/utils/debug"
)

// String dumps document tree for debugging and reports.
func (d *Document) String() string {
	tw := debug.NewTreeWriter()
	tw.TextBlock(0, "document", d.Title)
	tw.Fields(1, "section", map[string]string{
		"w":         strconv.Itoa(d.Section.Width),
		"h":         strconv.Itoa(d.Section.Height),
		"top":       strconv.Itoa(d.Section.Margins.Top),
		"right":     strconv.Itoa(d.Section.Margins.Right),
		"bottom":    strconv.Itoa(d.Section.Margins.Bottom),
		"left":      strconv.Itoa(d.Section.Margins.Left),
		"landscape": flag(d.Section.Landscape),
	})
	for _, el := range d.Body {
		switch e := el.(type) {
		case *Paragraph:
			dumpParagraph(tw, 1, e)
		case *Table:
			dumpTable(tw, 1, e)
		}
	}
	media := make(map[string]string, len(d.Media))
	for _, m := range d.Media {
		media[m.RelID] = fmt.Sprintf("%s(%d)", m.Name, len(m.Data))
	}
	if len(media) > 0 {
		tw.Fields(1, "media", media)
	}
	return tw.String()
}

func flag(v bool) string {
	if v {
		return "true"
	}
	return ""
}

func dumpParagraph(tw *debug.TreeWriter, depth int, p *Paragraph) {
	fields := map[string]string{
		"style": p.Style,
		"jc":    p.Alignment,
	}
	if s := p.Spacing; s != nil {
		fields["line"] = strconv.Itoa(s.Line)
		fields["before"] = strconv.Itoa(s.Before)
		fields["after"] = strconv.Itoa(s.After)
	}
	if ind := p.Indent; ind != nil {
		fields["ind.firstLine"] = strconv.Itoa(ind.FirstLine)
		fields["ind.left"] = strconv.Itoa(ind.Left)
		fields["ind.right"] = strconv.Itoa(ind.Right)
	}
	if b := p.Bottom; b != nil {
		fields["border"] = fmt.Sprintf("%s/%d/%d/%s", b.Style, b.Size, b.Space, b.Color)
	}
	tw.Fields(depth, "paragraph", fields)

	for _, r := range p.Runs {
		switch {
		case r.Drawing != nil:
			tw.Fields(depth+1, "drawing", map[string]string{
				"media": r.Drawing.Media.Name,
				"cx":    strconv.FormatInt(r.Drawing.CX, 10),
				"cy":    strconv.FormatInt(r.Drawing.CY, 10),
			})
		case r.Break == PageBreak:
			tw.Line(depth+1, "page-break")
		case r.Break == LineBreak:
			tw.Line(depth+1, "line-break")
		default:
			tw.Fields(depth+1, "run", map[string]string{
				"font":      r.Font,
				"sz":        strconv.Itoa(r.Size),
				"color":     r.Color,
				"bold":      flag(r.Bold),
				"italic":    flag(r.Italic),
				"underline": flag(r.Underline),
			})
			tw.TextBlock(depth+2, "text", r.Text)
		}
	}
}

func dumpTable(tw *debug.TreeWriter, depth int, t *Table) {
	tw.Fields(depth, "table", map[string]string{
		"width": fmt.Sprintf("%d%s", t.Width.W, t.Width.Type),
		"grid":  fmt.Sprint(t.Grid),
	})
	for i, row := range t.Rows {
		tw.Fields(depth+1, "row", map[string]string{"index": strconv.Itoa(i), "header": flag(row.Header)})
		for _, c := range row.Cells {
			span := ""
			if c.GridSpan > 1 {
				span = strconv.Itoa(c.GridSpan)
			}
			tw.Fields(depth+2, "cell", map[string]string{
				"w":        strconv.Itoa(c.Width),
				"gridSpan": span,
				"vMerge":   string(c.VMerge),
				"fill":     c.Shading,
				"vAlign":   c.VAlign,
			})
			for _, p := range c.Paragraphs {
				dumpParagraph(tw, depth+3, p)
			}
		}
	}
}
