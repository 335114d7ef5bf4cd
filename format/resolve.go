// Package format computes effective block formatting from document format
// and partial per block overrides. Both export and preview use it.
package format

import (
	"wtpl/model"
)

// Resolved is effective formatting of a block.
type Resolved struct {
	Font      model.FontSettings
	Paragraph model.ParagraphSettings
}

// Resolve returns global format verbatim unless block opted out of it, in
// which case every unset field falls back individually. Indent is merged
// one level deeper than other paragraph fields.
func Resolve(block *model.Block, global *model.DocumentFormat) Resolved {
	if block == nil || block.Format.UsesGlobal() {
		return Resolved{Font: global.Font, Paragraph: global.Paragraph}
	}
	return Resolved{
		Font:      ApplyFont(global.Font, block.Format.Font),
		Paragraph: ApplyParagraph(global.Paragraph, block.Format.Paragraph),
	}
}

// Heading returns formatting of h1-h6 elements inside a text block and
// true if block has heading format enabled.
func Heading(block *model.Block, resolved Resolved) (Resolved, bool) {
	if block == nil || !block.Format.EnableHeadingFormat || block.Format.HeadingFormat == nil {
		return resolved, false
	}
	hf := block.Format.HeadingFormat
	return Resolved{
		Font:      ApplyFont(resolved.Font, hf.Font),
		Paragraph: ApplyParagraph(resolved.Paragraph, hf.Paragraph),
	}, true
}

// ApplyFont overrides base with every field set in o.
func ApplyFont(base model.FontSettings, o *model.FontOverride) model.FontSettings {
	if o == nil {
		return base
	}
	if o.Family != nil {
		base.Family = *o.Family
	}
	if o.Size != nil {
		base.Size = *o.Size
	}
	if o.Color != nil {
		base.Color = *o.Color
	}
	if o.Bold != nil {
		base.Bold = *o.Bold
	}
	if o.Italic != nil {
		base.Italic = *o.Italic
	}
	if o.Underline != nil {
		base.Underline = *o.Underline
	}
	return base
}

// ApplyParagraph overrides base with every field set in o. Border, when
// present in o, replaces base border as a whole.
func ApplyParagraph(base model.ParagraphSettings, o *model.ParagraphOverride) model.ParagraphSettings {
	if o == nil {
		return base
	}
	if o.LineHeight != nil {
		base.LineHeight = *o.LineHeight
	}
	if o.ParagraphSpacing != nil {
		base.ParagraphSpacing = *o.ParagraphSpacing
	}
	if o.SpaceBefore != nil {
		base.SpaceBefore = *o.SpaceBefore
	}
	if o.Alignment != nil {
		base.Alignment = *o.Alignment
	}
	if o.Border != nil {
		base.Border = o.Border
	}
	base.Indent = ApplyIndent(base.Indent, o.Indent)
	return base
}

func ApplyIndent(base model.IndentSettings, o *model.IndentOverride) model.IndentSettings {
	if o == nil {
		return base
	}
	if o.FirstLine != nil {
		base.FirstLine = *o.FirstLine
	}
	if o.FirstLineUnit != nil {
		base.FirstLineUnit = *o.FirstLineUnit
	}
	if o.Left != nil {
		base.Left = *o.Left
	}
	if o.LeftUnit != nil {
		base.LeftUnit = *o.LeftUnit
	}
	if o.Right != nil {
		base.Right = *o.Right
	}
	if o.RightUnit != nil {
		base.RightUnit = *o.RightUnit
	}
	return base
}

// BottomBorder returns effective bottom border or nil when nothing should
// be drawn.
func (r Resolved) BottomBorder() *model.BottomBorder {
	if r.Paragraph.Border == nil || r.Paragraph.Border.Bottom == nil {
		return nil
	}
	if b := r.Paragraph.Border.Bottom; b.Style != model.BorderNone && b.Style != "" {
		return b
	}
	return nil
}

// ColumnRatio returns width share of the left column of two-column block.
func ColumnRatio(block *model.Block) float64 {
	if r := block.Format.ColumnRatio; r != nil && *r > 0 && *r < 1 {
		return *r
	}
	return 0.5
}
