// Package importer turns Word documents into templates: body is split into
// elements which are grouped into content blocks by recognition rules.
package importer

import (
	"strings"

	"wtpl/model"
)

// Kind of document element.
type Kind string

const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindImage     Kind = "image"
	KindPageBreak Kind = "page-break"
)

// Style is formatting summary of an element. Zero values mean "not set".
type Style struct {
	FontSize    float64 // pt
	FontFamily  string
	Color       string
	Bold        bool
	Italic      bool
	Underline   bool
	Alignment   model.Alignment
	LineHeight  float64 // multiple of font size
	TextIndent  float64 // pt, negative for hanging
	LeftIndent  float64
	RightIndent float64
	SpaceBefore float64
	SpaceAfter  float64
}

// ImageData describes picture found in document.
type ImageData struct {
	Src    string // data URI
	Width  float64
	Height float64
	Alt    string
}

// Element is a single body element of Word document.
type Element struct {
	Kind  Kind
	Text  string // plain text
	HTML  string
	Level int // heading level
	Style Style

	Image *ImageData
	Table *model.TableContent
}

// structural elements always form blocks of their own
func (e *Element) structural() bool {
	return e.Kind == KindTable || e.Kind == KindImage || e.Kind == KindPageBreak
}

// Title returns suggested block title for element: heading text or
// beginning of paragraph text.
func (e *Element) Title() string {
	switch e.Kind {
	case KindHeading:
		return e.Text
	case KindImage, KindPageBreak:
		return ""
	}
	return shorten(e.Text, titleLength)
}

const titleLength = 20

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
