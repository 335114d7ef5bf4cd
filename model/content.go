package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Content is block payload, its concrete type is determined by block type.
type Content interface {
	isContent()
}

// TextContent is HTML fragment of text and ai-generated blocks.
type TextContent string

type TwoColumnContent struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type ImageAlignment string

const (
	ImageLeft   ImageAlignment = "left"
	ImageCenter ImageAlignment = "center"
	ImageRight  ImageAlignment = "right"
	ImageAuto   ImageAlignment = "auto"
)

type ImageContent struct {
	Src       string         `json:"src"`
	Alt       string         `json:"alt"`
	Title     string         `json:"title,omitempty"`
	Width     *float64       `json:"width,omitempty"`
	Height    *float64       `json:"height,omitempty"`
	MaxWidth  *float64       `json:"maxWidth,omitempty"`
	MaxHeight *float64       `json:"maxHeight,omitempty"`
	Alignment ImageAlignment `json:"alignment"`
	Caption   string         `json:"caption,omitempty"`
	Border    *ImageBorder   `json:"border,omitempty"`
}

type ImageBorder struct {
	Enabled bool    `json:"enabled"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Style   string  `json:"style"` // solid, dashed, dotted
}

type PageBreakContent struct {
	Type     string            `json:"type"`
	Settings PageBreakSettings `json:"settings"`
}

type PageBreakSettings struct {
	AddBlankPage    bool        `json:"addBlankPage"`
	PageOrientation Orientation `json:"pageOrientation,omitempty"`
}

type TableContent struct {
	Rows  [][]TableCell `json:"rows"`
	Style *TableStyle   `json:"style,omitempty"`
}

// TableCell with Hidden set is absorbed by a merge and never rendered.
type TableCell struct {
	Content string     `json:"content"`
	ColSpan int        `json:"colspan,omitempty"`
	RowSpan int        `json:"rowspan,omitempty"`
	Hidden  bool       `json:"hidden,omitempty"`
	Style   *CellStyle `json:"style,omitempty"`
}

type CellStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	VerticalAlign   string `json:"verticalAlign,omitempty"` // top, middle, bottom
	TextAlign       string `json:"textAlign,omitempty"`     // left, center, right
}

type TableBorderStyle string

const (
	TableBorderNone   TableBorderStyle = "none"
	TableBorderSolid  TableBorderStyle = "solid"
	TableBorderDashed TableBorderStyle = "dashed"
	TableBorderDotted TableBorderStyle = "dotted"
)

type TableStyle struct {
	BorderStyle TableBorderStyle `json:"borderStyle,omitempty"`
	BorderWidth *float64         `json:"borderWidth,omitempty"`
	BorderColor string           `json:"borderColor,omitempty"`
	CellPadding *float64         `json:"cellPadding,omitempty"`
	CellSpacing *float64         `json:"cellSpacing,omitempty"`
	Width       *TableWidth      `json:"width,omitempty"`
	HeaderRows  int              `json:"headerRows,omitempty"`
	HeaderStyle *HeaderStyle     `json:"headerStyle,omitempty"`
}

type HeaderStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontBold        bool   `json:"fontBold,omitempty"`
	TextAlign       string `json:"textAlign,omitempty"`
}

// TableWidth is "auto", "full" or fixed width in points.
type TableWidth struct {
	Mode  string // auto, full or empty for fixed
	Fixed float64
}

func (w TableWidth) MarshalJSON() ([]byte, error) {
	if w.Mode != "" {
		return json.Marshal(w.Mode)
	}
	return json.Marshal(w.Fixed)
}

func (w *TableWidth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var mode string
		if err := json.Unmarshal(data, &mode); err != nil {
			return err
		}
		if mode != "auto" && mode != "full" {
			return fmt.Errorf("unknown table width %q", mode)
		}
		*w = TableWidth{Mode: mode}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("bad table width: %w", err)
	}
	*w = TableWidth{Fixed: v}
	return nil
}

func (TextContent) isContent()      {}
func (TwoColumnContent) isContent() {}
func (ImageContent) isContent()     {}
func (PageBreakContent) isContent() {}
func (TableContent) isContent()     {}

// ErrContentMismatch is returned when block content shape does not match block type.
var ErrContentMismatch = errors.New("content does not match block type")

// ContentMatches reports whether c has the shape required by block type t.
func ContentMatches(t BlockType, c Content) bool {
	switch c.(type) {
	case TextContent:
		return t == BlockText || t == BlockAI
	case TwoColumnContent:
		return t == BlockTwoColumn
	case ImageContent:
		return t == BlockImage
	case PageBreakContent:
		return t == BlockPageBreak
	case TableContent:
		return t == BlockTable
	}
	return false
}

// Text returns HTML of text and ai-generated blocks.
func (b *Block) Text() (string, bool) {
	s, ok := b.Content.(TextContent)
	return string(s), ok
}

type blockJSON struct {
	ID         string          `json:"id"`
	Type       BlockType       `json:"type"`
	Content    json.RawMessage `json:"content"`
	Format     BlockFormat     `json:"format"`
	Position   int             `json:"position"`
	Title      string          `json:"title"`
	AIPrompt   string          `json:"aiPrompt,omitempty"`
	AISettings *AISettings     `json:"aiSettings,omitempty"`
}

func (b *Block) MarshalJSON() ([]byte, error) {
	if b.Content != nil && !ContentMatches(b.Type, b.Content) {
		return nil, fmt.Errorf("block %q of type %q: %w", b.ID, b.Type, ErrContentMismatch)
	}
	var content Content = b.Content
	if content == nil {
		content = emptyContent(b.Type)
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockJSON{
		ID:         b.ID,
		Type:       b.Type,
		Content:    raw,
		Format:     b.Format,
		Position:   b.Position,
		Title:      b.Title,
		AIPrompt:   b.AIPrompt,
		AISettings: b.AISettings,
	})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var bj blockJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return err
	}
	if !bj.Type.Valid() {
		return fmt.Errorf("block %q: unknown type %q", bj.ID, bj.Type)
	}
	content, err := decodeContent(bj.Type, bj.Content)
	if err != nil {
		return fmt.Errorf("block %q of type %q: %w", bj.ID, bj.Type, err)
	}
	*b = Block{
		ID:         bj.ID,
		Type:       bj.Type,
		Content:    content,
		Format:     bj.Format,
		Position:   bj.Position,
		Title:      bj.Title,
		AIPrompt:   bj.AIPrompt,
		AISettings: bj.AISettings,
	}
	return nil
}

func emptyContent(t BlockType) Content {
	switch t {
	case BlockTwoColumn:
		return TwoColumnContent{}
	case BlockImage:
		return ImageContent{}
	case BlockPageBreak:
		return PageBreakContent{Type: string(BlockPageBreak)}
	case BlockTable:
		return TableContent{}
	default:
		return TextContent("")
	}
}

func decodeContent(t BlockType, raw json.RawMessage) (Content, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return emptyContent(t), nil
	}

	isString := raw[0] == '"'
	if (t == BlockText || t == BlockAI) != isString {
		return nil, ErrContentMismatch
	}

	var (
		content Content
		err     error
	)
	switch t {
	case BlockText, BlockAI:
		var s string
		err = json.Unmarshal(raw, &s)
		content = TextContent(s)
	case BlockTwoColumn:
		var c TwoColumnContent
		err = json.Unmarshal(raw, &c)
		content = c
	case BlockImage:
		var c ImageContent
		err = json.Unmarshal(raw, &c)
		content = c
	case BlockPageBreak:
		var c PageBreakContent
		err = json.Unmarshal(raw, &c)
		if c.Type == "" {
			c.Type = string(BlockPageBreak)
		}
		content = c
	case BlockTable:
		var c TableContent
		err = json.Unmarshal(raw, &c)
		content = c
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentMismatch, err)
	}
	return content, nil
}
