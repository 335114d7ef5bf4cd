package editor

import (
	"wtpl/format"
	"wtpl/model"
)

// MarginsUpdate changes some page margins.
type MarginsUpdate struct {
	Top    *float64
	Bottom *float64
	Left   *float64
	Right  *float64
}

// PageUpdate changes some page settings, margins are merged field by field.
type PageUpdate struct {
	Width       *float64
	Height      *float64
	Margins     *MarginsUpdate
	Orientation *model.Orientation
}

// FormatUpdate is partial document format. Nested objects (paragraph
// indent, page margins) are merged one level deeper.
type FormatUpdate struct {
	Font      *model.FontOverride
	Paragraph *model.ParagraphOverride
	Page      *PageUpdate
}

// UpdateFormat merges u into document format of current template.
func (s *Session) UpdateFormat(u FormatUpdate) {
	if s.Template == nil {
		return
	}
	f := &s.Template.Format
	f.Font = format.ApplyFont(f.Font, u.Font)
	f.Paragraph = format.ApplyParagraph(f.Paragraph, u.Paragraph)
	f.Page = applyPage(f.Page, u.Page)
}

func applyPage(base model.PageSettings, u *PageUpdate) model.PageSettings {
	if u == nil {
		return base
	}
	set(&base.Width, u.Width)
	set(&base.Height, u.Height)
	if u.Orientation != nil {
		base.Orientation = *u.Orientation
	}
	if m := u.Margins; m != nil {
		set(&base.Margins.Top, m.Top)
		set(&base.Margins.Bottom, m.Bottom)
		set(&base.Margins.Left, m.Left)
		set(&base.Margins.Right, m.Right)
	}
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
