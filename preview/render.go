package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"wtpl/css"
	"wtpl/htmlfrag"
	"wtpl/model"
)

// Options controls preview page rendering.
type Options struct {
	// Width limits page width in pixels, 0 means no limit.
	Width int
}

// html void elements must not have end tags
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// Render produces standalone HTML page with preview of the template.
func Render(t *model.Template, opts Options, log *zap.Logger) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateDirective("DOCTYPE html")

	root := doc.CreateElement("html")
	root.CreateAttr("lang", "zh-CN")
	head := root.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(t.Name)

	body := root.CreateElement("body")
	body.CreateAttr("style", "margin: 0; padding: 20px; background-color: #f3f4f6;")

	wrapper := body.CreateElement("div")
	if opts.Width > 0 {
		wrapper.CreateAttr("style", fmt.Sprintf("max-width: %dpx; margin: 0 auto;", opts.Width))
	}
	page := wrapper.CreateElement("div")
	page.CreateAttr("class", "word-page word-preview")
	page.CreateAttr("style", PageStyle(t).String())

	for _, block := range t.SortedBlocks() {
		if !model.ContentMatches(block.Type, block.Content) {
			log.Warn("Block content does not match its type, skipping", zap.String("id", block.ID), zap.String("type", string(block.Type)))
			continue
		}
		if err := renderBlock(page, block, t); err != nil {
			log.Warn("Unable to render block, skipping", zap.String("id", block.ID), zap.Error(err))
		}
	}

	closeEmpty(root)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("unable to write preview: %w", err)
	}
	return buf.Bytes(), nil
}

func div(parent *etree.Element, style css.Declarations) *etree.Element {
	el := parent.CreateElement("div")
	if len(style) > 0 {
		el.CreateAttr("style", style.String())
	}
	return el
}

func renderBlock(page *etree.Element, block *model.Block, t *model.Template) error {
	st := BuildStyle(block, t)
	switch c := block.Content.(type) {
	case model.TextContent:
		content := css.Declarations{}
		content.Set("margin", "0")
		content.Set("padding", "0")
		content.Set("line-height", "inherit")
		content = append(content, st.Font...)
		return appendHTML(div(div(page, st.Block), content), string(c))

	case model.TwoColumnContent:
		container := st.Block
		container.Set("display", "flex")
		container.Set("justify-content", "space-between")
		container.Set("align-items", "baseline")
		container.Set("width", "100%")
		row := div(page, container)
		for _, col := range []struct{ text, align string }{{c.Left, "left"}, {c.Right, "right"}} {
			s := append(css.Declarations{}, st.Font...)
			s.Set("text-align", col.align)
			s.Set("white-space", "nowrap")
			s.Set("flex", "0 0 auto")
			div(row, s).SetText(col.text)
		}

	case model.ImageContent:
		renderImage(page, c)

	case model.PageBreakContent:
		renderPageBreak(page, c)

	case model.TableContent:
		return renderTable(div(page, st.Block), c, st.Font)
	}
	return nil
}

func renderImage(page *etree.Element, img model.ImageContent) {
	if strings.TrimSpace(img.Src) == "" {
		var s css.Declarations
		s.Set("margin-bottom", "16px")
		box := div(div(page, s), css.ParseInline("border: 2px dashed #ccc; padding: 20px; text-align: center; color: #999; border-radius: 4px; background-color: #f9f9f9"))
		box.CreateElement("p").SetText("图片占位符")
		p := box.CreateElement("p")
		p.CreateAttr("style", "font-size: 12px;")
		p.SetText("请在编辑器中上传图片")
		return
	}

	container, picture, caption := ImageStyle(img)
	box := div(page, container)
	el := box.CreateElement("img")
	el.CreateAttr("src", img.Src)
	el.CreateAttr("alt", img.Alt)
	if img.Title != "" {
		el.CreateAttr("title", img.Title)
	}
	el.CreateAttr("style", picture.String())
	if img.Caption != "" {
		div(box, caption).SetText(img.Caption)
	}
}

func renderPageBreak(page *etree.Element, pb model.PageBreakContent) {
	var s css.Declarations
	s.Set("margin-bottom", "16px")
	box := div(div(page, s), css.ParseInline("border-top: 2px dashed #007acc; padding: 10px 0; text-align: center; color: #007acc; font-size: 12px; font-weight: bold; background-color: #f0f8ff; border-radius: 4px; margin: 10px 0"))
	box.CreateElement("p").SetText("📄 换页符")

	note := func(text string) {
		p := box.CreateElement("p")
		p.CreateAttr("style", "font-size: 10px; margin-top: 4px;")
		p.SetText(text)
	}
	if pb.Settings.AddBlankPage {
		note("+ 空白页")
	}
	switch pb.Settings.PageOrientation {
	case model.Landscape:
		note("方向: 横向")
	case model.Portrait:
		note("方向: 纵向")
	}
}

func renderTable(parent *etree.Element, tc model.TableContent, font css.Declarations) error {
	tableStyle, border, padding := TableStyle(tc.Style)
	table := parent.CreateElement("table")
	table.CreateAttr("style", tableStyle.String())
	tbody := table.CreateElement("tbody")

	headerRows := 0
	var hs *model.HeaderStyle
	if tc.Style != nil {
		headerRows, hs = tc.Style.HeaderRows, tc.Style.HeaderStyle
	}

	for r, row := range tc.Rows {
		tr := tbody.CreateElement("tr")
		for _, cell := range row {
			if cell.Hidden {
				continue
			}
			tag := "td"
			if r < headerRows {
				tag = "th"
			}
			td := tr.CreateElement(tag)
			if cell.ColSpan > 1 {
				td.CreateAttr("colspan", fmt.Sprint(cell.ColSpan))
			}
			if cell.RowSpan > 1 {
				td.CreateAttr("rowspan", fmt.Sprint(cell.RowSpan))
			}

			s := append(css.Declarations{}, font...)
			s.Set("border", border)
			s.Set("padding", padding)
			s.Set("font-weight", "normal")
			s.Set("text-align", "left")
			if r < headerRows && hs != nil {
				if hs.BackgroundColor != "" {
					s.Set("background-color", hs.BackgroundColor)
				}
				if hs.FontBold {
					s.Set("font-weight", "bold")
				}
				if hs.TextAlign != "" {
					s.Set("text-align", hs.TextAlign)
				}
			}
			if cs := cell.Style; cs != nil {
				if cs.BackgroundColor != "" {
					s.Set("background-color", cs.BackgroundColor)
				}
				if cs.TextAlign != "" {
					s.Set("text-align", cs.TextAlign)
				}
				if cs.VerticalAlign != "" {
					s.Set("vertical-align", cs.VerticalAlign)
				}
			}
			td.CreateAttr("style", s.String())
			if err := appendHTML(td, cell.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendHTML copies fragment into parent dropping scripts, styles and
// event handler attributes.
func appendHTML(parent *etree.Element, fragment string) error {
	nodes, err := htmlfrag.ParseNodes(fragment)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		copyNode(parent, n)
	}
	return nil
}

func copyNode(parent *etree.Element, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		parent.CreateText(n.Data)
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "iframe", "object":
			return
		}
		el := parent.CreateElement(n.Data)
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if a.Namespace != "" || strings.HasPrefix(key, "on") {
				continue
			}
			if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				continue
			}
			el.CreateAttr(a.Key, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			copyNode(el, c)
		}
	}
}

// closeEmpty makes sure non void elements get explicit end tag, browsers
// do not understand self closing <div/>.
func closeEmpty(el *etree.Element) {
	if len(el.Child) == 0 && !voidElements[el.Tag] {
		el.CreateText("")
		return
	}
	for _, c := range el.ChildElements() {
		closeEmpty(c)
	}
}
