package importer

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"wtpl/model"
)

// props are Word paragraph and run properties, nil means "inherit".
type props struct {
	size      *float64
	family    *string
	color     *string
	bold      *bool
	italic    *bool
	underline *bool

	align     *model.Alignment
	line      *float64 // multiple of font size, or points when lineExact
	lineExact bool
	firstLine *float64
	firstChar *float64 // first line indent in characters
	left      *float64
	right     *float64
	before    *float64
	after     *float64
	outline   *int
}

// merge returns p overridden by every property set in o.
func (p props) merge(o props) props {
	pick(&p.size, o.size)
	pick(&p.family, o.family)
	pick(&p.color, o.color)
	pick(&p.bold, o.bold)
	pick(&p.italic, o.italic)
	pick(&p.underline, o.underline)
	pick(&p.align, o.align)
	if o.line != nil {
		p.line, p.lineExact = o.line, o.lineExact
	}
	if o.firstLine != nil || o.firstChar != nil {
		p.firstLine, p.firstChar = o.firstLine, o.firstChar
	}
	pick(&p.left, o.left)
	pick(&p.right, o.right)
	pick(&p.before, o.before)
	pick(&p.after, o.after)
	pick(&p.outline, o.outline)
	return p
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func ptr[T any](v T) *T {
	return &v
}

func attr(el *etree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}
	a := el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func number(el *etree.Element, name string) (float64, bool) {
	s, ok := attr(el, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// twips converts attribute in twentieths of a point.
func twips(el *etree.Element, name string) *float64 {
	if v, ok := number(el, name); ok {
		return ptr(round2(v / 20))
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toggle reads on/off property: presence means on unless value says otherwise.
func toggle(el *etree.Element) *bool {
	if el == nil {
		return nil
	}
	switch v, _ := attr(el, "w:val"); strings.ToLower(v) {
	case "0", "false", "off", "none":
		return ptr(false)
	}
	return ptr(true)
}

func runProps(rpr *etree.Element) props {
	var p props
	if rpr == nil {
		return p
	}
	if v, ok := number(rpr.SelectElement("w:sz"), "w:val"); ok {
		p.size = ptr(v / 2)
	}
	if f := rpr.SelectElement("w:rFonts"); f != nil {
		for _, name := range []string{"w:eastAsia", "w:ascii", "w:hAnsi"} {
			if v, ok := attr(f, name); ok && v != "" {
				p.family = ptr(v)
				break
			}
		}
	}
	if v, ok := attr(rpr.SelectElement("w:color"), "w:val"); ok && !strings.EqualFold(v, "auto") {
		p.color = ptr("#" + strings.ToLower(v))
	}
	p.bold = toggle(rpr.SelectElement("w:b"))
	p.italic = toggle(rpr.SelectElement("w:i"))
	p.underline = toggle(rpr.SelectElement("w:u"))
	return p
}

func paragraphProps(ppr *etree.Element) props {
	var p props
	if ppr == nil {
		return p
	}
	if v, ok := attr(ppr.SelectElement("w:jc"), "w:val"); ok {
		p.align = ptr(alignment(v))
	}
	if sp := ppr.SelectElement("w:spacing"); sp != nil {
		p.before = twips(sp, "w:before")
		p.after = twips(sp, "w:after")
		if v, ok := number(sp, "w:line"); ok {
			switch rule, _ := attr(sp, "w:lineRule"); rule {
			case "exact", "atLeast":
				p.line, p.lineExact = ptr(v/20), true
			default:
				p.line = ptr(round2(v / 240))
			}
		}
	}
	if ind := ppr.SelectElement("w:ind"); ind != nil {
		p.left = twips(ind, "w:left")
		if p.left == nil {
			p.left = twips(ind, "w:start")
		}
		p.right = twips(ind, "w:right")
		if p.right == nil {
			p.right = twips(ind, "w:end")
		}
		switch {
		case twips(ind, "w:hanging") != nil:
			p.firstLine = ptr(-*twips(ind, "w:hanging"))
		case twips(ind, "w:firstLine") != nil:
			p.firstLine = twips(ind, "w:firstLine")
		}
		if v, ok := number(ind, "w:firstLineChars"); ok {
			p.firstChar = ptr(v / 100)
		}
	}
	if v, ok := number(ppr.SelectElement("w:outlineLvl"), "w:val"); ok {
		p.outline = ptr(int(v))
	}
	return p
}

func alignment(v string) model.Alignment {
	switch v {
	case "center":
		return model.AlignCenter
	case "right", "end":
		return model.AlignRight
	case "both", "distribute", "justify":
		return model.AlignJustify
	}
	return model.AlignLeft
}

// style fills element style from resolved properties.
func (p props) style() Style {
	var s Style
	if p.size != nil {
		s.FontSize = *p.size
	}
	if p.family != nil {
		s.FontFamily = *p.family
	}
	if p.color != nil {
		s.Color = *p.color
	}
	s.Bold = p.bold != nil && *p.bold
	s.Italic = p.italic != nil && *p.italic
	s.Underline = p.underline != nil && *p.underline
	if p.align != nil {
		s.Alignment = *p.align
	}
	if p.line != nil {
		s.LineHeight = *p.line
		if p.lineExact {
			s.LineHeight = round2(*p.line / cmp.Or(s.FontSize, model.DefaultFontSize))
		}
	}
	switch {
	case p.firstChar != nil:
		s.TextIndent = round2(*p.firstChar * cmp.Or(s.FontSize, model.DefaultFontSize))
	case p.firstLine != nil:
		s.TextIndent = *p.firstLine
	}
	if p.left != nil {
		s.LeftIndent = *p.left
	}
	if p.right != nil {
		s.RightIndent = *p.right
	}
	if p.before != nil {
		s.SpaceBefore = *p.before
	}
	if p.after != nil {
		s.SpaceAfter = *p.after
	}
	return s
}
