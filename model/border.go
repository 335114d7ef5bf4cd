package model

// BottomBorderUpdate changes some fields of block bottom border.
type BottomBorderUpdate struct {
	Style *BorderStyle
	Color *string
	Size  *float64
	Space *float64
}

// SetBottomBorder applies update to block bottom border. Missing fields are
// completed with defaults, resulting style "none" removes the border.
func (f *BlockFormat) SetBottomBorder(u BottomBorderUpdate) {
	if f.Paragraph == nil {
		f.Paragraph = &ParagraphOverride{}
	}
	if f.Paragraph.Border == nil {
		f.Paragraph.Border = &BorderSettings{}
	}
	f.Paragraph.Border.Bottom = CompleteBottomBorder(f.Paragraph.Border.Bottom, u)
}

// CompleteBottomBorder returns new border with update applied on top of
// current (which may be nil). Result is nil when style ends up "none".
func CompleteBottomBorder(current *BottomBorder, u BottomBorderUpdate) *BottomBorder {
	next := BottomBorder{Style: BorderNone, Color: DefaultColor, Size: 1, Space: 1}
	if current != nil {
		if current.Style != "" {
			next.Style = current.Style
		}
		if current.Color != "" {
			next.Color = current.Color
		}
		if current.Size != 0 {
			next.Size = current.Size
		}
		if current.Space != 0 {
			next.Space = current.Space
		}
	}
	if u.Style != nil {
		next.Style = *u.Style
	}
	if u.Color != nil {
		next.Color = *u.Color
	}
	if u.Size != nil {
		next.Size = *u.Size
	}
	if u.Space != nil {
		next.Space = *u.Space
	}
	if next.Style == BorderNone || next.Style == "" {
		return nil
	}
	return &next
}
