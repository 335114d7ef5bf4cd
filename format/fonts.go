package format

import (
	"strings"
)

// FontMap maps human facing (mostly CJK) font names to names Word expects.
type FontMap map[string]string

// DefaultFontMap is used when configuration does not supply one.
var DefaultFontMap = FontMap{
	"宋体":         "SimSun",
	"仿宋_GB2312": "仿宋_GB2312",
	"仿宋":         "FangSong",
	"楷体":         "KaiTi",
	"黑体":         "SimHei",
	"微软雅黑":       "Microsoft YaHei",
}

// WordName returns document font name, unmapped names are passed as is.
func (m FontMap) WordName(family string) string {
	if name, ok := m[family]; ok {
		return name
	}
	if m == nil {
		if name, ok := DefaultFontMap[family]; ok {
			return name
		}
	}
	return family
}

// Merge returns new map with entries of other added to (and overriding) m.
func (m FontMap) Merge(other map[string]string) FontMap {
	res := make(FontMap, len(m)+len(other))
	for k, v := range m {
		res[k] = v
	}
	for k, v := range other {
		res[k] = v
	}
	return res
}

// PreviewFontFamily returns CSS font-family value with fallback chain so
// preview degrades gracefully when exact font is missing.
func PreviewFontFamily(family string) string {
	if family == "" {
		return "sans-serif"
	}
	if strings.Contains(family, "仿宋") {
		return `"` + family + `", "仿宋", "FangSong", "STFangsong", serif`
	}
	return `"` + family + `", sans-serif`
}
