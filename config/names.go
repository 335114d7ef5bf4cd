package config

import "unicode/utf8"

// maxNameBytes is a common file system limit for a single path element,
// leaving room for extension.
const maxNameBytes = 240

// truncateName cuts name to maxNameBytes on rune boundary. Template names are
// mostly CJK, 3 bytes per rune in UTF-8.
func truncateName(name string) string {
	if len(name) <= maxNameBytes {
		return name
	}
	cut := maxNameBytes
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
