package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

func newXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

// val creates child element with single w:val attribute.
func val(parent *etree.Element, tag, v string) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:val", v)
	return el
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

// DocumentXML serializes document body into word/document.xml.
func DocumentXML(d *Document) *etree.Document {
	doc := newXMLDocument()
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)

	body := root.CreateElement("w:body")
	for _, el := range d.Body {
		switch e := el.(type) {
		case *Paragraph:
			writeParagraph(body, e)
		case *Table:
			writeTable(body, e)
			// Word merges adjacent tables, keep them apart
			body.CreateElement("w:p")
		}
	}
	writeSection(body, &d.Section)
	return doc
}

func writeSection(body *etree.Element, s *Section) {
	sect := body.CreateElement("w:sectPr")
	sz := sect.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", itoa(s.Width))
	sz.CreateAttr("w:h", itoa(s.Height))
	if s.Landscape {
		sz.CreateAttr("w:orient", "landscape")
	}
	mar := sect.CreateElement("w:pgMar")
	mar.CreateAttr("w:top", itoa(s.Margins.Top))
	mar.CreateAttr("w:right", itoa(s.Margins.Right))
	mar.CreateAttr("w:bottom", itoa(s.Margins.Bottom))
	mar.CreateAttr("w:left", itoa(s.Margins.Left))
	mar.CreateAttr("w:header", "720")
	mar.CreateAttr("w:footer", "720")
	mar.CreateAttr("w:gutter", "0")
}

func writeParagraph(parent *etree.Element, p *Paragraph) {
	el := parent.CreateElement("w:p")

	ppr := etree.NewElement("w:pPr")
	if p.Style != "" {
		val(ppr, "w:pStyle", p.Style)
	}
	if p.Bottom != nil {
		writeBorder(ppr.CreateElement("w:pBdr"), "w:bottom", p.Bottom)
	}
	if s := p.Spacing; s != nil {
		sp := ppr.CreateElement("w:spacing")
		sp.CreateAttr("w:before", itoa(s.Before))
		sp.CreateAttr("w:after", itoa(s.After))
		if s.Line > 0 {
			sp.CreateAttr("w:line", itoa(s.Line))
			sp.CreateAttr("w:lineRule", "auto")
		}
	}
	if ind := p.Indent; ind != nil && (ind.FirstLine != 0 || ind.Left != 0 || ind.Right != 0) {
		in := ppr.CreateElement("w:ind")
		in.CreateAttr("w:left", itoa(ind.Left))
		in.CreateAttr("w:right", itoa(ind.Right))
		switch {
		case ind.FirstLine > 0:
			in.CreateAttr("w:firstLine", itoa(ind.FirstLine))
		case ind.FirstLine < 0:
			in.CreateAttr("w:hanging", itoa(-ind.FirstLine))
		}
	}
	if p.Alignment != "" {
		val(ppr, "w:jc", p.Alignment)
	}
	if len(ppr.ChildElements()) > 0 {
		el.AddChild(ppr)
	}

	for _, r := range p.Runs {
		writeRun(el, r)
	}
}

func writeBorder(parent *etree.Element, tag string, b *Border) {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:val", b.Style)
	if b.Style == "none" {
		el.CreateAttr("w:sz", "0")
		el.CreateAttr("w:space", "0")
		el.CreateAttr("w:color", "auto")
		return
	}
	el.CreateAttr("w:sz", itoa(b.Size))
	el.CreateAttr("w:space", itoa(b.Space))
	el.CreateAttr("w:color", b.Color)
}

func writeBorders(parent *etree.Element, tag string, b *Borders) {
	if b == nil {
		return
	}
	el := parent.CreateElement(tag)
	for _, edge := range []struct {
		tag string
		b   *Border
	}{
		{"w:top", b.Top}, {"w:left", b.Left}, {"w:bottom", b.Bottom}, {"w:right", b.Right},
		{"w:insideH", b.InsideH}, {"w:insideV", b.InsideV},
	} {
		if edge.b != nil {
			writeBorder(el, edge.tag, edge.b)
		}
	}
}

func writeRunProps(r *etree.Element, run *Run) {
	rpr := r.CreateElement("w:rPr")
	if run.Font != "" {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", run.Font)
		fonts.CreateAttr("w:hAnsi", run.Font)
		fonts.CreateAttr("w:eastAsia", run.Font)
		fonts.CreateAttr("w:cs", run.Font)
		fonts.CreateAttr("w:hint", "eastAsia")
	}
	if run.Bold {
		rpr.CreateElement("w:b")
	}
	if run.Italic {
		rpr.CreateElement("w:i")
	}
	if run.Color != "" {
		val(rpr, "w:color", run.Color)
	}
	if run.Size > 0 {
		val(rpr, "w:sz", itoa(run.Size))
		val(rpr, "w:szCs", itoa(run.Size))
	}
	if run.Underline {
		val(rpr, "w:u", "single")
	}
	if len(rpr.ChildElements()) == 0 {
		r.RemoveChild(rpr)
	}
}

func writeRun(parent *etree.Element, run *Run) {
	r := parent.CreateElement("w:r")
	switch {
	case run.Drawing != nil:
		writeDrawing(r.CreateElement("w:drawing"), run.Drawing)
		return
	case run.Break == PageBreak:
		r.CreateElement("w:br").CreateAttr("w:type", "page")
		return
	}

	writeRunProps(r, run)
	if run.Break == LineBreak {
		r.CreateElement("w:br")
		return
	}
	for i, line := range strings.Split(run.Text, "\n") {
		if i > 0 {
			r.CreateElement("w:br")
		}
		if line == "" {
			continue
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(line)
	}
}

func writeDrawing(parent *etree.Element, d *Drawing) {
	cx, cy := strconv.FormatInt(d.CX, 10), strconv.FormatInt(d.CY, 10)

	inline := parent.CreateElement("wp:inline")
	for _, a := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(a, "0")
	}
	ext := inline.CreateElement("wp:extent")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	eff := inline.CreateElement("wp:effectExtent")
	for _, a := range []string{"l", "t", "r", "b"} {
		eff.CreateAttr(a, "0")
	}
	pr := inline.CreateElement("wp:docPr")
	pr.CreateAttr("id", itoa(d.ID))
	pr.CreateAttr("name", d.Name)
	if d.Descr != "" {
		pr.CreateAttr("descr", d.Descr)
	}
	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", nsPic)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cnv := nv.CreateElement("pic:cNvPr")
	cnv.CreateAttr("id", "0")
	cnv.CreateAttr("name", d.Media.Name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", d.Media.RelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")

	if o := d.Outline; o != nil {
		ln := sp.CreateElement("a:ln")
		ln.CreateAttr("w", strconv.FormatInt(o.Width, 10))
		ln.CreateElement("a:solidFill").CreateElement("a:srgbClr").CreateAttr("val", o.Color)
		ln.CreateElement("a:prstDash").CreateAttr("val", o.Dash)
	}
}

func writeWidth(parent *etree.Element, tag string, w Width) {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:w", itoa(w.W))
	el.CreateAttr("w:type", string(w.Type))
}

func writeMargins(parent *etree.Element, tag string, m *Margins) {
	el := parent.CreateElement(tag)
	for _, edge := range []struct {
		tag string
		v   int
	}{
		{"w:top", m.Top}, {"w:left", m.Left}, {"w:bottom", m.Bottom}, {"w:right", m.Right},
	} {
		writeWidth(el, edge.tag, Width{Type: WidthDxa, W: edge.v})
	}
}

func writeTable(parent *etree.Element, t *Table) {
	tbl := parent.CreateElement("w:tbl")

	pr := tbl.CreateElement("w:tblPr")
	writeWidth(pr, "w:tblW", t.Width)
	if t.CellSpacing > 0 {
		writeWidth(pr, "w:tblCellSpacing", Width{Type: WidthDxa, W: t.CellSpacing})
	}
	writeBorders(pr, "w:tblBorders", t.Borders)
	if t.Width.Type == WidthDxa {
		val(pr, "w:tblLayout", "fixed")
	}
	if t.CellMargins != nil {
		writeMargins(pr, "w:tblCellMar", t.CellMargins)
	}

	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range t.Grid {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", itoa(w))
	}

	for _, row := range t.Rows {
		tr := tbl.CreateElement("w:tr")
		if row.Header {
			tr.CreateElement("w:trPr").CreateElement("w:tblHeader")
		}
		for _, cell := range row.Cells {
			writeCell(tr, cell)
		}
	}
}

func writeCell(tr *etree.Element, c *Cell) {
	tc := tr.CreateElement("w:tc")
	pr := tc.CreateElement("w:tcPr")
	writeWidth(pr, "w:tcW", Width{Type: WidthDxa, W: c.Width})
	if c.GridSpan > 1 {
		val(pr, "w:gridSpan", itoa(c.GridSpan))
	}
	switch c.VMerge {
	case VMergeRestart:
		val(pr, "w:vMerge", "restart")
	case VMergeContinue:
		pr.CreateElement("w:vMerge")
	}
	writeBorders(pr, "w:tcBorders", c.Borders)
	if c.Shading != "" {
		shd := pr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", c.Shading)
	}
	if c.Margins != nil {
		writeMargins(pr, "w:tcMar", c.Margins)
	}
	if c.VAlign != "" {
		val(pr, "w:vAlign", c.VAlign)
	}

	// every cell must end with a paragraph
	if len(c.Paragraphs) == 0 {
		tc.CreateElement("w:p")
		return
	}
	for _, p := range c.Paragraphs {
		writeParagraph(tc, p)
	}
}
