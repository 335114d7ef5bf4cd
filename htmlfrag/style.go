package htmlfrag

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wtpl/css"
	"wtpl/units"
)

// Style is inline formatting accumulated from ancestor elements. Zero
// values mean "not set by HTML", so block format applies.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Font      string
	Size      float64 // points
	Color     string  // #rrggbb
}

// merge combines inherited style with element's own. Boolean flags are
// sticky, element values win for the rest.
func (s Style) merge(own Style) Style {
	s.Bold = s.Bold || own.Bold
	s.Italic = s.Italic || own.Italic
	s.Underline = s.Underline || own.Underline
	if own.Font != "" {
		s.Font = own.Font
	}
	if own.Size != 0 {
		s.Size = own.Size
	}
	if own.Color != "" {
		s.Color = own.Color
	}
	return s
}

// elementStyle resolves style of a single element from its tag and its
// style attribute.
func elementStyle(n *html.Node) Style {
	var st Style
	switch n.DataAtom {
	case atom.B, atom.Strong:
		st.Bold = true
	case atom.I, atom.Em:
		st.Italic = true
	case atom.U:
		st.Underline = true
	}

	decls := css.ParseInline(attr(n, "style"))
	if v, ok := decls.Get("font-weight"); ok {
		if v.Keyword == "bold" || v.Keyword == "bolder" || (v.IsNumeric() && v.Value >= 600) {
			st.Bold = true
		}
	}
	if v, ok := decls.Get("font-style"); ok && (v.Keyword == "italic" || v.Keyword == "oblique") {
		st.Italic = true
	}
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		if v, ok := decls.Get(prop); ok && strings.Contains(strings.ToLower(v.Raw), "underline") {
			st.Underline = true
		}
	}
	if v, ok := decls.Get("font-family"); ok {
		st.Font = css.FirstFamily(v)
	}
	if v, ok := decls.Get("font-size"); ok {
		st.Size = fontSize(v)
	}
	if v, ok := decls.Get("color"); ok {
		st.Color = css.NormalizeColor(v.Raw)
	}
	// legacy <font face="" size="" color="">
	if n.DataAtom == atom.Font {
		if face := attr(n, "face"); face != "" && st.Font == "" {
			st.Font = css.FirstFamily(css.Value{Raw: face})
		}
		if color := attr(n, "color"); color != "" && st.Color == "" {
			st.Color = css.NormalizeColor(color)
		}
	}
	return st
}

func fontSize(v css.Value) float64 {
	switch v.Unit {
	case "pt":
		return v.Value
	case "px":
		return units.ToPoints(v.Value, units.Px, 0)
	case "":
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return f
		}
	}
	// relative sizes (em, %, keywords) are left to block format
	return 0
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
