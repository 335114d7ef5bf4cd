package importer

import (
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"wtpl/archive"
	"wtpl/model"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
	relsPart     = "word/_rels/document.xml.rels"
	corePart     = "docProps/core.xml"

	emuPerPixel = 9525
)

var ErrNotDocx = errors.New("not a Word document")

// Document is result of reading Word file.
type Document struct {
	Title    string // from core properties
	Elements []*Element
}

type wordStyle struct {
	name    string
	basedOn string
	props   props
}

type reader struct {
	parts    map[string][]byte
	styles   map[string]*wordStyle
	defaults props
	rels     map[string]string
	log      *zap.Logger
	// paragraph style used when paragraph names none
	normal string
}

// Read parses docx package into flat list of body elements.
func Read(data []byte, log *zap.Logger) (*Document, error) {
	parts, err := archive.ReadAll(data, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDocx, err)
	}
	body, ok := parts[documentPart]
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing", ErrNotDocx, documentPart)
	}

	r := &reader{
		parts:  parts,
		styles: make(map[string]*wordStyle),
		rels:   make(map[string]string),
		log:    log,
	}
	if err := r.loadStyles(); err != nil {
		log.Warn("Unable to read styles, using defaults", zap.Error(err))
	}
	if err := r.loadRels(); err != nil {
		log.Warn("Unable to read relationships, images will be skipped", zap.Error(err))
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", documentPart, err)
	}
	b := doc.FindElement("/w:document/w:body")
	if b == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrNotDocx)
	}
	res := &Document{Title: r.title()}
	res.Elements = r.container(b)
	log.Debug("Document read", zap.Int("elements", len(res.Elements)))
	return res, nil
}

func (r *reader) container(parent *etree.Element) []*Element {
	var res []*Element
	for _, el := range parent.ChildElements() {
		switch el.Tag {
		case "p":
			res = append(res, r.paragraph(el)...)
		case "tbl":
			res = append(res, r.table(el))
		case "sdt":
			if c := el.SelectElement("w:sdtContent"); c != nil {
				res = append(res, r.container(c)...)
			}
		}
	}
	return res
}

func (r *reader) title() string {
	data, ok := r.parts[corePart]
	if !ok {
		return ""
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return ""
	}
	if t := doc.FindElement("//dc:title"); t != nil {
		return strings.TrimSpace(t.Text())
	}
	return ""
}

func (r *reader) loadStyles() error {
	data, ok := r.parts[stylesPart]
	if !ok {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	root := doc.SelectElement("w:styles")
	if root == nil {
		return errors.New("no styles element")
	}
	if def := root.SelectElement("w:docDefaults"); def != nil {
		if rpr := def.FindElement("w:rPrDefault/w:rPr"); rpr != nil {
			r.defaults = r.defaults.merge(runProps(rpr))
		}
		if ppr := def.FindElement("w:pPrDefault/w:pPr"); ppr != nil {
			r.defaults = r.defaults.merge(paragraphProps(ppr))
		}
	}
	for _, st := range root.SelectElements("w:style") {
		id := st.SelectAttrValue("w:styleId", "")
		if id == "" {
			continue
		}
		ws := &wordStyle{
			name:    strings.ToLower(valueOf(st.SelectElement("w:name"))),
			basedOn: valueOf(st.SelectElement("w:basedOn")),
		}
		ws.props = paragraphProps(st.SelectElement("w:pPr")).merge(runProps(st.SelectElement("w:rPr")))
		r.styles[id] = ws
		if def, _ := attr(st, "w:default"); st.SelectAttrValue("w:type", "") == "paragraph" && (def == "1" || def == "true" || def == "on") {
			r.normal = id
		}
	}
	return nil
}

// child is nil safe SelectElement.
func child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	return el.SelectElement(tag)
}

func valueOf(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue("w:val", "")
}

// style returns properties of style with all ancestors applied.
func (r *reader) style(id string) props {
	if id == "" {
		id = r.normal
	}
	var chain []*wordStyle
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		st, ok := r.styles[id]
		if !ok {
			break
		}
		chain = append(chain, st)
		id = st.basedOn
	}
	p := r.defaults
	for i := len(chain) - 1; i >= 0; i-- {
		p = p.merge(chain[i].props)
	}
	return p
}

var headingName = regexp.MustCompile(`^(?:heading|标题)\s*([1-6])$`)

// headingLevel detects heading by style name or outline level.
func (r *reader) headingLevel(styleID string, p props) int {
	if st, ok := r.styles[styleID]; ok {
		if m := headingName.FindStringSubmatch(st.name); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
		if st.name == "title" {
			return 1
		}
	}
	if p.outline != nil && *p.outline >= 0 && *p.outline < 6 {
		return *p.outline + 1
	}
	return 0
}

func (r *reader) loadRels() error {
	data, ok := r.parts[relsPart]
	if !ok {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return errors.New("empty relationships")
	}
	for _, rel := range root.SelectElements("Relationship") {
		if rel.SelectAttrValue("TargetMode", "") == "External" {
			continue
		}
		r.rels[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}
	return nil
}

// paragraphState accumulates runs of a single output paragraph.
type paragraphState struct {
	base  props
	level int
	html  strings.Builder
	text  strings.Builder
	first *props // first run with text
	bold, italic, underline bool
}

func (r *reader) paragraph(p *etree.Element) []*Element {
	ppr := p.SelectElement("w:pPr")
	styleID := valueOf(child(ppr, "w:pStyle"))
	base := r.style(styleID).merge(paragraphProps(ppr))
	level := r.headingLevel(styleID, base)

	var res []*Element
	if toggleOn(child(ppr, "w:pageBreakBefore")) {
		res = append(res, pageBreak())
	}

	cur := newParagraphState(base, level)
	flush := func() {
		if el := cur.element(); el != nil {
			res = append(res, el)
		}
		cur = newParagraphState(base, level)
	}
	var walk func(parent *etree.Element)
	walk = func(parent *etree.Element) {
		for _, el := range parent.ChildElements() {
			switch el.Tag {
			case "r":
				rp := base.merge(runProps(el.SelectElement("w:rPr")))
				for _, c := range el.ChildElements() {
					switch c.Tag {
					case "t":
						cur.add(c.Text(), rp)
					case "tab":
						cur.add("\t", rp)
					case "br", "cr":
						if c.SelectAttrValue("w:type", "") == "page" {
							flush()
							res = append(res, pageBreak())
							continue
						}
						cur.add("\n", rp)
					case "drawing", "pict":
						if img := r.image(c); img != nil {
							flush()
							res = append(res, img)
						}
					}
				}
			case "hyperlink", "ins", "smartTag", "fldSimple", "customXml":
				walk(el)
			case "sdt":
				if c := el.SelectElement("w:sdtContent"); c != nil {
					walk(c)
				}
			}
		}
	}
	walk(p)
	flush()
	return res
}

func toggleOn(el *etree.Element) bool {
	v := toggle(el)
	return v != nil && *v
}

func pageBreak() *Element {
	return &Element{Kind: KindPageBreak}
}

func newParagraphState(base props, level int) *paragraphState {
	return &paragraphState{base: base, level: level, bold: true, italic: true, underline: true}
}

func (s *paragraphState) add(text string, rp props) {
	if text == "" {
		return
	}
	s.text.WriteString(text)
	if strings.TrimSpace(text) != "" {
		if s.first == nil {
			s.first = &rp
		}
		s.bold = s.bold && isOn(rp.bold)
		s.italic = s.italic && isOn(rp.italic)
		s.underline = s.underline && isOn(rp.underline)
	}
	s.html.WriteString(runHTML(text, rp, s.base))
}

func isOn(v *bool) bool {
	return v != nil && *v
}

// element returns nil for paragraphs without visible text.
func (s *paragraphState) element() *Element {
	text := strings.TrimSpace(s.text.String())
	if text == "" || s.first == nil {
		return nil
	}
	st := s.base.merge(*s.first).style()
	st.Bold, st.Italic, st.Underline = s.bold, s.italic, s.underline

	el := &Element{Kind: KindParagraph, Text: text, Style: st}
	tag := "p"
	if s.level > 0 {
		el.Kind, el.Level = KindHeading, s.level
		tag = "h" + strconv.Itoa(s.level)
	}
	el.HTML = "<" + tag + ">" + s.html.String() + "</" + tag + ">"
	return el
}

// runHTML renders run text with inline formatting, properties equal to
// paragraph ones are left to block format.
func runHTML(text string, rp, base props) string {
	out := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	var css []string
	if rp.size != nil && (base.size == nil || *rp.size != *base.size) {
		css = append(css, "font-size: "+strconv.FormatFloat(*rp.size, 'f', -1, 64)+"pt")
	}
	if rp.family != nil && (base.family == nil || *rp.family != *base.family) {
		css = append(css, "font-family: "+*rp.family)
	}
	if rp.color != nil && (base.color == nil || *rp.color != *base.color) {
		css = append(css, "color: "+*rp.color)
	}
	if len(css) > 0 {
		out = `<span style="` + html.EscapeString(strings.Join(css, "; ")) + `">` + out + "</span>"
	}
	if isOn(rp.underline) {
		out = "<u>" + out + "</u>"
	}
	if isOn(rp.italic) {
		out = "<em>" + out + "</em>"
	}
	if isOn(rp.bold) {
		out = "<strong>" + out + "</strong>"
	}
	return out
}

// image converts drawing or legacy picture into image element.
func (r *reader) image(el *etree.Element) *Element {
	var relID string
	if blip := el.FindElement(".//a:blip"); blip != nil {
		relID = blip.SelectAttrValue("r:embed", "")
	} else if vi := el.FindElement(".//v:imagedata"); vi != nil {
		relID = vi.SelectAttrValue("r:id", "")
	}
	target, ok := r.rels[relID]
	if relID == "" || !ok {
		return nil
	}
	name := path.Join("word", target)
	if strings.HasPrefix(target, "/") {
		name = strings.TrimPrefix(target, "/")
	}
	data, ok := r.parts[name]
	if !ok {
		r.log.Warn("Image part is missing", zap.String("part", name))
		return nil
	}
	mime := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}
	img := &ImageData{Src: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)}
	if ext := el.FindElement(".//wp:extent"); ext != nil {
		if cx, ok := number(ext, "cx"); ok {
			img.Width = round2(cx / emuPerPixel)
		}
		if cy, ok := number(ext, "cy"); ok {
			img.Height = round2(cy / emuPerPixel)
		}
	}
	if pr := el.FindElement(".//wp:docPr"); pr != nil {
		img.Alt = cmp.Or(pr.SelectAttrValue("descr", ""), pr.SelectAttrValue("title", ""))
	}
	return &Element{Kind: KindImage, Image: img, Text: img.Alt}
}

// alignmentOf returns alignment of element, left when unset.
func alignmentOf(s Style) model.Alignment {
	if s.Alignment == "" {
		return model.AlignLeft
	}
	return s.Alignment
}
