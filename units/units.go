// Package units converts author facing lengths into points and into the
// integer units used by WordprocessingML.
package units

import (
	"math"
	"strconv"
)

// Unit is an author facing length unit.
type Unit string

const (
	Pt   Unit = "pt"
	Cm   Unit = "cm"
	Px   Unit = "px"
	Char Unit = "char"
)

// DefaultFontSize is used for char conversion when context font size is not known.
const DefaultFontSize = 12.0

const (
	pointsPerCm = 72 / 2.54
	pointsPerPx = 72.0 / 96.0
	emuPerPx    = 9525
)

// ToPoints converts value expressed in unit to points. One char is
// approximated as fontSize points. Unknown units are treated as points,
// zero is always zero.
func ToPoints(value float64, unit Unit, fontSize float64) float64 {
	if value == 0 {
		return 0
	}
	switch unit {
	case Cm:
		return value * pointsPerCm
	case Px:
		return value * pointsPerPx
	case Char:
		if fontSize == 0 {
			fontSize = DefaultFontSize
		}
		return value * fontSize
	default:
		return value
	}
}

// Twips converts points to twentieths of a point.
func Twips(pt float64) int {
	return int(math.Round(pt * 20))
}

// HalfPoints converts font size in points to half-points.
func HalfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

// EighthPoints converts border width in points to eighths of a point.
func EighthPoints(pt float64) int {
	return int(math.Round(pt * 8))
}

// LineTwips converts line height multiplier to "auto" line spacing value
// (240 is single line).
func LineTwips(lineHeight float64) int {
	return int(math.Round(lineHeight * 240))
}

// EMU converts pixels to English Metric Units used by drawing extents.
func EMU(px float64) int64 {
	return int64(math.Round(px * emuPerPx))
}

// CSSLength produces CSS length for preview. pt, cm and px are passed
// verbatim, char is expanded using font size (14 when unknown), anything
// else is treated as px.
func CSSLength(value float64, unit Unit, fontSize float64) string {
	switch unit {
	case Pt, Cm, Px:
		return formatNumber(value) + string(unit)
	case Char:
		if fontSize == 0 {
			fontSize = 14
		}
		return formatNumber(value*fontSize) + "pt"
	default:
		return formatNumber(value) + "px"
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Valid reports if unit is one of known units.
func (u Unit) Valid() bool {
	switch u {
	case Pt, Cm, Px, Char:
		return true
	}
	return false
}
