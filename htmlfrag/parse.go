// Package htmlfrag turns rich text HTML fragments into paragraphs of
// styled text runs.
package htmlfrag

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run is a piece of text with uniform style.
type Run struct {
	Text  string
	Style Style
	// Marker is synthesized list bullet or number, it carries no HTML style.
	Marker bool
}

// Kind of a paragraph produced from fragment.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindListItem
	KindQuote
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list-item"
	case KindQuote:
		return "quote"
	default:
		return "paragraph"
	}
}

// Segment is one output paragraph.
type Segment struct {
	Kind Kind
	// Level is heading level (1-6) for headings and nesting depth (0 based)
	// for list items.
	Level int
	Runs  []Run
}

// Text returns concatenated text of all runs.
func (s Segment) Text() string {
	var b strings.Builder
	for _, r := range s.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// ParseNodes parses fragment in the context of a <div> element.
func ParseNodes(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html fragment: %w", err)
	}
	return nodes, nil
}

// Parse splits fragment into paragraphs. Fragment without block level
// elements is a single paragraph. When nothing produced any text, plain
// text of the fragment becomes the only paragraph. Empty fragment yields
// nothing.
func Parse(fragment string) ([]Segment, error) {
	if fragment == "" {
		return nil, nil
	}
	nodes, err := ParseNodes(fragment)
	if err != nil {
		return nil, err
	}

	var segs []Segment
	if !containsBlock(nodes) {
		var runs []Run
		for _, n := range nodes {
			runs = append(runs, ParseRuns(n, Style{})...)
		}
		if len(runs) > 0 {
			segs = append(segs, Segment{Kind: KindParagraph, Runs: runs})
		}
	} else {
		w := &walker{}
		w.flow(nodes, KindParagraph)
		segs = w.segs
	}

	if len(segs) == 0 {
		var b strings.Builder
		for _, n := range nodes {
			b.WriteString(TextContent(n))
		}
		segs = append(segs, Segment{Kind: KindParagraph, Runs: []Run{{Text: b.String()}}})
	}
	return segs, nil
}

// ParseRuns walks node tree collecting text runs. Text is trimmed and
// empty text is skipped, <br> produces a newline run with inherited style.
func ParseRuns(n *html.Node, inherited Style) []Run {
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			return []Run{{Text: text, Style: inherited}}
		}
		return nil
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			return []Run{{Text: "\n", Style: inherited}}
		}
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return nil
		}
		st := inherited.merge(elementStyle(n))
		var runs []Run
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			runs = append(runs, ParseRuns(c, st)...)
		}
		return runs
	case html.DocumentNode:
		var runs []Run
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			runs = append(runs, ParseRuns(c, inherited)...)
		}
		return runs
	}
	return nil
}

// TextContent returns all text under node as is.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Ul, atom.Ol, atom.Blockquote, atom.Div:
		return true
	}
	return false
}

func containsBlock(nodes []*html.Node) bool {
	for _, n := range nodes {
		if isBlock(n) || containsBlock(children(n)) {
			return true
		}
	}
	return false
}

func children(n *html.Node) []*html.Node {
	var res []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, c)
	}
	return res
}

type walker struct {
	segs []Segment
}

func (w *walker) add(kind Kind, level int, runs []Run) {
	if len(runs) == 0 {
		return
	}
	w.segs = append(w.segs, Segment{Kind: kind, Level: level, Runs: runs})
}

// flow handles sequence of sibling nodes: every element and every non
// blank text node becomes its own paragraph.
func (w *walker) flow(nodes []*html.Node, kind Kind) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			w.add(kind, 0, ParseRuns(n, Style{}))
		case html.ElementNode:
			w.element(n, kind)
		}
	}
}

func (w *walker) element(n *html.Node, kind Kind) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		w.add(KindHeading, level, ParseRuns(n, Style{}))
	case atom.Ul, atom.Ol:
		w.list(n, 0)
	case atom.Blockquote:
		if containsBlock(children(n)) {
			w.flow(children(n), KindQuote)
			return
		}
		w.add(KindQuote, 0, ParseRuns(n, Style{}))
	case atom.Div:
		if containsBlock(children(n)) {
			w.flow(children(n), kind)
			return
		}
		w.add(kind, 0, ParseRuns(n, Style{}))
	default:
		// p and anything else
		w.add(kind, 0, ParseRuns(n, Style{}))
	}
}

func (w *walker) list(n *html.Node, level int) {
	ordered := n.DataAtom == atom.Ol
	index := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		index++
		var (
			runs   []Run
			nested []*html.Node
		)
		st := elementStyle(li)
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			runs = append(runs, ParseRuns(c, st)...)
		}
		if len(runs) > 0 {
			marker := "• "
			if ordered {
				marker = strconv.Itoa(index) + ". "
			}
			w.add(KindListItem, level, append([]Run{{Text: marker, Marker: true}}, runs...))
		}
		for _, sub := range nested {
			w.list(sub, level+1)
		}
	}
}
