// Package docx builds WordprocessingML object tree from a template and
// packs it into .docx file.
package docx

import "time"

// Document is an intermediate object tree, independent of XML. All
// lengths are in twips unless noted otherwise.
type Document struct {
	Title       string
	Description string
	Creator     string
	Created     time.Time

	// document defaults, used for styles.xml
	DefaultFont string
	DefaultSize int // half-points

	Section Section
	Body    []Element
	Media   []*Media
}

// Element is a body level item: *Paragraph or *Table.
type Element interface {
	element()
}

type Section struct {
	Width     int
	Height    int
	Margins   Margins
	Landscape bool
}

type Margins struct {
	Top, Right, Bottom, Left int
}

type Paragraph struct {
	Style     string // Heading1..Heading6 or empty for Normal
	Alignment string // left, center, right, both
	Spacing   *Spacing
	Indent    *Indent
	Bottom    *Border
	Runs      []*Run
}

type Spacing struct {
	Line   int // 240 is single line, 0 means not set
	Before int
	After  int
}

type Indent struct {
	FirstLine int
	Left      int
	Right     int
}

type BreakType int

const (
	NoBreak BreakType = iota
	LineBreak
	PageBreak
)

// Run is a text run, a break or an inline picture.
type Run struct {
	Text      string
	Font      string
	Size      int // half-points
	Color     string
	Bold      bool
	Italic    bool
	Underline bool

	Break   BreakType
	Drawing *Drawing
}

// Border is WordprocessingML border, Size is in eighths of a point and
// Space in points.
type Border struct {
	Style string
	Size  int
	Space int
	Color string
}

// NoBorder hides border explicitly.
func NoBorder() *Border {
	return &Border{Style: "none"}
}

type Borders struct {
	Top, Left, Bottom, Right *Border
	// table only
	InsideH, InsideV *Border
}

// AllBorders sets every edge (and inside edges) to copies of b.
func AllBorders(b *Border) *Borders {
	cp := func() *Border {
		c := *b
		return &c
	}
	return &Borders{Top: cp(), Left: cp(), Bottom: cp(), Right: cp(), InsideH: cp(), InsideV: cp()}
}

type WidthType string

const (
	WidthAuto WidthType = "auto"
	WidthDxa  WidthType = "dxa"
	WidthPct  WidthType = "pct" // fiftieths of a percent
)

type Width struct {
	Type WidthType
	W    int
}

type Table struct {
	Width       Width
	Grid        []int
	Borders     *Borders
	CellMargins *Margins
	CellSpacing int
	Rows        []*Row
}

type Row struct {
	Header bool
	Cells  []*Cell
}

type VMerge string

const (
	VMergeNone     VMerge = ""
	VMergeRestart  VMerge = "restart"
	VMergeContinue VMerge = "continue"
)

type Cell struct {
	Width      int
	GridSpan   int
	VMerge     VMerge
	Borders    *Borders
	Shading    string // fill color, hex without '#'
	Margins    *Margins
	VAlign     string // top, center, bottom
	Paragraphs []*Paragraph
}

// Drawing is an inline picture, extent is in EMU.
type Drawing struct {
	Media   *Media
	ID      int
	Name    string
	Descr   string
	CX, CY  int64
	Outline *Outline
}

// Outline is picture border, Width is in EMU.
type Outline struct {
	Width int64
	Color string
	Dash  string // solid, dash, sysDot
}

// Media is a binary part stored under word/media.
type Media struct {
	RelID       string
	Name        string // file name inside word/media
	ContentType string
	Data        []byte
}

func (*Paragraph) element() {}
func (*Table) element()     {}

// Text returns concatenated text of all runs, breaks become new lines.
func (p *Paragraph) Text() string {
	var s []byte
	for _, r := range p.Runs {
		switch r.Break {
		case LineBreak, PageBreak:
			s = append(s, '\n')
		default:
			s = append(s, r.Text...)
		}
	}
	return string(s)
}
