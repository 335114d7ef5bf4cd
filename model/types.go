// Package model defines document template: ordered typed content blocks
// plus document wide format.
package model

import (
	"time"

	"wtpl/units"
)

type BlockType string

const (
	BlockText      BlockType = "text"
	BlockAI        BlockType = "ai-generated"
	BlockTwoColumn BlockType = "two-column"
	BlockImage     BlockType = "image"
	BlockPageBreak BlockType = "page-break"
	BlockTable     BlockType = "table"
)

// BlockTypes lists all known block types in the order they are offered to users.
var BlockTypes = []BlockType{BlockText, BlockAI, BlockTwoColumn, BlockImage, BlockPageBreak, BlockTable}

func (t BlockType) Valid() bool {
	for _, bt := range BlockTypes {
		if bt == t {
			return true
		}
	}
	return false
}

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

type BorderStyle string

const (
	BorderNone      BorderStyle = "none"
	BorderSingle    BorderStyle = "single"
	BorderDouble    BorderStyle = "double"
	BorderThickThin BorderStyle = "thickThin"
)

type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Template is a document template as edited and exported.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Content     []*Block       `json:"content"`
	Format      DocumentFormat `json:"format"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	// saved UI expansion state, block id -> expanded
	ExpandedBlocks map[string]bool `json:"expandedBlocks,omitempty"`
}

// DocumentFormat is always fully populated, it is fallback for every block
// which does not override a property.
type DocumentFormat struct {
	Font      FontSettings      `json:"font"`
	Paragraph ParagraphSettings `json:"paragraph"`
	Page      PageSettings      `json:"page"`
}

type FontSettings struct {
	Family    string  `json:"family"`
	Size      float64 `json:"size"`  // points
	Color     string  `json:"color"` // #rrggbb
	Bold      bool    `json:"bold"`
	Italic    bool    `json:"italic"`
	Underline bool    `json:"underline"`
}

type ParagraphSettings struct {
	LineHeight       float64         `json:"lineHeight"`
	ParagraphSpacing float64         `json:"paragraphSpacing"` // points after
	SpaceBefore      float64         `json:"spaceBefore"`      // points before
	Indent           IndentSettings  `json:"indent"`
	Alignment        Alignment       `json:"alignment"`
	Border           *BorderSettings `json:"border,omitempty"`
}

type IndentSettings struct {
	FirstLine     float64    `json:"firstLine"`
	FirstLineUnit units.Unit `json:"firstLineUnit"`
	Left          float64    `json:"left"`
	LeftUnit      units.Unit `json:"leftUnit"`
	Right         float64    `json:"right"`
	RightUnit     units.Unit `json:"rightUnit"`
}

type BorderSettings struct {
	Bottom *BottomBorder `json:"bottom,omitempty"`
}

// BottomBorder is either absent or has all fields set.
type BottomBorder struct {
	Style BorderStyle `json:"style"`
	Color string      `json:"color"`
	Size  float64     `json:"size"`  // points
	Space float64     `json:"space"` // points
}

type PageSettings struct {
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Margins     MarginSettings `json:"margins"`
	Orientation Orientation    `json:"orientation"`
}

type MarginSettings struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// ContentWidth returns printable width of the page in points.
func (p PageSettings) ContentWidth() float64 {
	return p.Width - p.Margins.Left - p.Margins.Right
}

// Block is one typed unit of document content. Content always matches Type.
type Block struct {
	ID         string      `json:"id"`
	Type       BlockType   `json:"type"`
	Content    Content     `json:"content"`
	Format     BlockFormat `json:"format"`
	Position   int         `json:"position"`
	Title      string      `json:"title"`
	AIPrompt   string      `json:"aiPrompt,omitempty"`
	AISettings *AISettings `json:"aiSettings,omitempty"`
}

type BlockStyle string

const (
	StyleNormal   BlockStyle = "normal"
	StyleHeading1 BlockStyle = "heading1"
	StyleHeading2 BlockStyle = "heading2"
	StyleHeading3 BlockStyle = "heading3"
	StyleQuote    BlockStyle = "quote"
)

// BlockFormat holds partial per block overrides. When UseGlobalFormat is
// unset or true all other fields are ignored.
type BlockFormat struct {
	UseGlobalFormat     *bool              `json:"useGlobalFormat,omitempty"`
	Font                *FontOverride      `json:"font,omitempty"`
	Paragraph           *ParagraphOverride `json:"paragraph,omitempty"`
	Style               BlockStyle         `json:"style,omitempty"`
	ColumnRatio         *float64           `json:"columnRatio,omitempty"`
	EnableHeadingFormat bool               `json:"enableHeadingFormat,omitempty"`
	HeadingFormat       *HeadingFormat     `json:"headingFormat,omitempty"`
}

// UsesGlobal reports whether block format should be ignored.
func (f *BlockFormat) UsesGlobal() bool {
	return f.UseGlobalFormat == nil || *f.UseGlobalFormat
}

type FontOverride struct {
	Family    *string  `json:"family,omitempty"`
	Size      *float64 `json:"size,omitempty"`
	Color     *string  `json:"color,omitempty"`
	Bold      *bool    `json:"bold,omitempty"`
	Italic    *bool    `json:"italic,omitempty"`
	Underline *bool    `json:"underline,omitempty"`
}

type ParagraphOverride struct {
	LineHeight       *float64        `json:"lineHeight,omitempty"`
	ParagraphSpacing *float64        `json:"paragraphSpacing,omitempty"`
	SpaceBefore      *float64        `json:"spaceBefore,omitempty"`
	Indent           *IndentOverride `json:"indent,omitempty"`
	Alignment        *Alignment      `json:"alignment,omitempty"`
	// non nil replaces document border entirely
	Border *BorderSettings `json:"border,omitempty"`
}

type IndentOverride struct {
	FirstLine     *float64    `json:"firstLine,omitempty"`
	FirstLineUnit *units.Unit `json:"firstLineUnit,omitempty"`
	Left          *float64    `json:"left,omitempty"`
	LeftUnit      *units.Unit `json:"leftUnit,omitempty"`
	Right         *float64    `json:"right,omitempty"`
	RightUnit     *units.Unit `json:"rightUnit,omitempty"`
}

// HeadingFormat is applied to h1-h6 elements of text blocks when enabled.
type HeadingFormat struct {
	Font      *FontOverride      `json:"font,omitempty"`
	Paragraph *ParagraphOverride `json:"paragraph,omitempty"`
}

type Provider string

const (
	ProviderQianwen Provider = "qianwen"
	ProviderMaxKB   Provider = "maxkb"
)

// AISettings are owned by a single AI block, use Clone when assigning.
type AISettings struct {
	Provider     Provider `json:"provider"`
	MaxKBBaseURL string   `json:"maxkbBaseUrl"`
	MaxKBAPIKey  string   `json:"maxkbApiKey"`
	MaxKBModel   string   `json:"maxkbModel"`
	SystemPrompt string   `json:"systemPrompt"`
}

// Clone returns independent copy of settings, nil stays nil.
func (s *AISettings) Clone() *AISettings {
	if s == nil {
		return nil
	}
	return &AISettings{
		Provider:     s.Provider,
		MaxKBBaseURL: s.MaxKBBaseURL,
		MaxKBAPIKey:  s.MaxKBAPIKey,
		MaxKBModel:   s.MaxKBModel,
		SystemPrompt: s.SystemPrompt,
	}
}

// Ptr is a small helper to build partial overrides.
func Ptr[T any](v T) *T {
	return &v
}
