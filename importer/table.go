package importer

import (
	"strings"

	"github.com/beevik/etree"

	"wtpl/model"
)

const (
	defaultCellPadding = 8.0
	defaultHeaderColor = "#f0f0f0"
	pxPerPoint         = 96.0 / 72.0
)

type cellPos struct{ row, col int }

// table converts w:tbl into table element. Horizontally merged cells get
// colspan, vertical merges get rowspan, absorbed cells are kept hidden so
// every row covers the full grid.
func (r *reader) table(tbl *etree.Element) *Element {
	var (
		rows       [][]model.TableCell
		texts      []string
		headerRows int
		header     = true
		anchors    = make(map[int]cellPos) // grid column -> vertical merge anchor
	)
	for _, tr := range tbl.SelectElements("w:tr") {
		ri := len(rows)
		if header && toggleOn(child(child(tr, "w:trPr"), "w:tblHeader")) {
			headerRows++
		} else {
			header = false
		}
		var row []model.TableCell
		col := 0
		for _, tc := range tr.SelectElements("w:tc") {
			pr := child(tc, "w:tcPr")
			span := 1
			if v, ok := number(child(pr, "w:gridSpan"), "w:val"); ok && v > 1 {
				span = int(v)
			}
			vm := child(pr, "w:vMerge")
			restart := vm != nil && vm.SelectAttrValue("w:val", "") == "restart"
			if a, ok := anchors[col]; ok && vm != nil && !restart {
				rows[a.row][a.col].RowSpan++
				for range span {
					row = append(row, model.TableCell{Hidden: true})
				}
				col += span
				continue
			}

			html, text := r.cellContent(tc)
			if text != "" {
				texts = append(texts, text)
			}
			cell := model.TableCell{Content: html}
			if span > 1 {
				cell.ColSpan = span
			}
			delete(anchors, col)
			if restart {
				cell.RowSpan = 1
				anchors[col] = cellPos{ri, len(row)}
			}
			if fill, _ := attr(child(pr, "w:shd"), "w:fill"); fill != "" && !strings.EqualFold(fill, "auto") {
				cell.Style = &model.CellStyle{BackgroundColor: "#" + strings.ToLower(fill)}
			}
			row = append(row, cell)
			for range span - 1 {
				row = append(row, model.TableCell{Hidden: true})
			}
			col += span
		}
		rows = append(rows, row)
	}
	for _, row := range rows {
		for i := range row {
			if row[i].RowSpan == 1 {
				row[i].RowSpan = 0
			}
		}
	}

	content := &model.TableContent{Rows: rows, Style: tableStyle(child(tbl, "w:tblPr"), headerRows)}
	return &Element{Kind: KindTable, Table: content, Text: strings.Join(texts, " ")}
}

// cellContent joins cell paragraphs with line breaks, block level wrappers
// are dropped.
func (r *reader) cellContent(tc *etree.Element) (string, string) {
	var htmls, texts []string
	for _, el := range r.container(tc) {
		if el.Kind != KindParagraph && el.Kind != KindHeading {
			continue
		}
		inner := el.HTML
		if i := strings.IndexByte(inner, '>'); i >= 0 {
			inner = inner[i+1:]
		}
		if i := strings.LastIndex(inner, "</"); i >= 0 {
			inner = inner[:i]
		}
		htmls = append(htmls, inner)
		texts = append(texts, el.Text)
	}
	return strings.Join(htmls, "<br>"), strings.Join(texts, " ")
}

func tableStyle(pr *etree.Element, headerRows int) *model.TableStyle {
	st := &model.TableStyle{
		BorderStyle: model.TableBorderSolid,
		BorderWidth: model.Ptr(1.0),
		BorderColor: model.DefaultColor,
		CellPadding: model.Ptr(defaultCellPadding),
		CellSpacing: model.Ptr(0.0),
		Width:       &model.TableWidth{Mode: "full"},
		HeaderRows:  headerRows,
		HeaderStyle: &model.HeaderStyle{BackgroundColor: defaultHeaderColor, FontBold: true, TextAlign: "center"},
	}
	if pr == nil {
		return st
	}
	if b := child(pr, "w:tblBorders"); b != nil {
		edge := child(b, "w:top")
		if edge == nil {
			edge = child(b, "w:insideH")
		}
		if edge != nil {
			st.BorderStyle = tableBorder(edge.SelectAttrValue("w:val", ""))
			if v, ok := number(edge, "w:sz"); ok && v > 0 {
				st.BorderWidth = model.Ptr(round2(v / 8))
			}
			if c := edge.SelectAttrValue("w:color", ""); c != "" && !strings.EqualFold(c, "auto") {
				st.BorderColor = "#" + strings.ToLower(c)
			}
		}
	}
	if w := child(pr, "w:tblW"); w != nil {
		switch w.SelectAttrValue("w:type", "") {
		case "dxa":
			if v, ok := number(w, "w:w"); ok && v > 0 {
				st.Width = &model.TableWidth{Fixed: round2(v / 20)}
			}
		case "auto":
			st.Width = &model.TableWidth{Mode: "auto"}
		}
	}
	if m := child(child(pr, "w:tblCellMar"), "w:left"); m != nil {
		if v := twips(m, "w:w"); v != nil {
			st.CellPadding = model.Ptr(round2(*v * pxPerPoint))
		}
	}
	if v := twips(child(pr, "w:tblCellSpacing"), "w:w"); v != nil {
		st.CellSpacing = model.Ptr(round2(*v * pxPerPoint))
	}
	return st
}

func tableBorder(v string) model.TableBorderStyle {
	switch v {
	case "nil", "none":
		return model.TableBorderNone
	case "dashed", "dashSmallGap", "dotDash", "dotDotDash":
		return model.TableBorderDashed
	case "dotted":
		return model.TableBorderDotted
	}
	return model.TableBorderSolid
}
