package css

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rgbRe  = regexp.MustCompile(`^rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
	rgbaRe = regexp.MustCompile(`^rgba\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*[\d.]+\s*\)$`)
)

var namedColors = map[string]string{
	"red":    "#FF0000",
	"blue":   "#0000FF",
	"green":  "#008000",
	"black":  "#000000",
	"white":  "#FFFFFF",
	"gray":   "#808080",
	"grey":   "#808080",
	"yellow": "#FFFF00",
	"orange": "#FFA500",
	"purple": "#800080",
	"pink":   "#FFC0CB",
	"brown":  "#A52A2A",
}

// NormalizeColor converts CSS color to "#rrggbb" form. Hex values are
// returned as is (short form expanded), unknown colors become black.
func NormalizeColor(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return "#000000"
	}
	if strings.HasPrefix(color, "#") {
		if len(color) == 4 {
			return "#" + strings.Repeat(color[1:2], 2) + strings.Repeat(color[2:3], 2) + strings.Repeat(color[3:4], 2)
		}
		return color
	}
	lower := strings.ToLower(color)
	if m := rgbRe.FindStringSubmatch(lower); m != nil {
		return hexRGB(m[1:4])
	}
	if m := rgbaRe.FindStringSubmatch(lower); m != nil {
		return hexRGB(m[1:4])
	}
	if c, ok := namedColors[lower]; ok {
		return c
	}
	return "#000000"
}

func hexRGB(parts []string) string {
	var rgb [3]int
	for i, p := range parts {
		v, _ := strconv.Atoi(p)
		rgb[i] = min(v, 255)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// HexNoHash returns color in form WordprocessingML expects: hex digits
// without leading '#', black when empty.
func HexNoHash(color string) string {
	if color == "" {
		return "000000"
	}
	return strings.TrimPrefix(color, "#")
}
